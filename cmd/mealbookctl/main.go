// mealbookctl 은 mealbook 서버 없이 같은 장부/좌석표를 직접 다루는 명령행 도구다.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package util

import (
	"fmt"
	"net"
)

// FindAvailablePort startPort 부터 tries 개를 차례로 시도해 비어 있는 TCP 포트를 찾는다.
// 모두 사용 중이면 startPort 를 그대로 돌려준다.
func FindAvailablePort(startPort, tries int) int {
	for p := startPort; p < startPort+tries && p <= 65535; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return p
	}
	return startPort
}

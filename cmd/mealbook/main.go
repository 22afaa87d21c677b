package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealbook/internal/config"
	"mealbook/internal/server"
	"mealbook/internal/util"
)

var (
	port        = flag.Int("port", 0, "서비스 포트 (config.toml 에 port 가 없을 때만 적용)")
	devMode     = flag.Bool("dev", false, "개발 모드")
	dataDir     = flag.String("dataDir", "", "저널 데이터 폴더 (설정 파일보다 우선)")
	storageRoot = flag.String("storageRoot", "", "장부/좌석표 루트 폴더 (설정 파일보다 우선)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Mealbook - 식대 장부 / 점심조 추첨")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("설정 로드 실패, 기본 설정 사용: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 명령행 인자로 덮어쓰기
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *storageRoot != "" {
		cfg.Storage.Root = *storageRoot
	}
	if *port == 0 && !info.PortSpecified {
		cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port, 20)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("서버 초기화 실패: %v", err)
	}
	fmt.Printf("장부 루트: %s\n", config.ResolvePath(cfg.Storage.Root))
	fmt.Printf("저널 DB: %s\n", config.JournalDBPath(cfg))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		fmt.Printf("서비스 시작, 포트 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("서비스 시작 실패: %v", err)
		}
	}()
	fmt.Println("\nCtrl+C 로 종료...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n서비스 종료 중...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("종료 중 오류: %v", err)
	}
}

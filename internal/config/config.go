package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 애플리케이션 설정
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Storage StorageConfig `toml:"storage"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Seating SeatingConfig `toml:"seating"`
	Export  ExportConfig  `toml:"export"`
}

// ServerConfig 서버 설정
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 저널 DB 위치와 보관 기간
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	// JournalRetentionDays 0 이면 저널을 지우지 않는다
	JournalRetentionDays int `toml:"journal_retention_days"`
}

// StorageConfig 장부/좌석표 파일 루트. 아래에 "2025년 하반기" 같은 학기 폴더가 있다.
type StorageConfig struct {
	Root string `toml:"root"`
}

// LedgerConfig 장부 시트
type LedgerConfig struct {
	SheetName string `toml:"sheet_name"`
}

// SeatingConfig 점심조 좌석표
type SeatingConfig struct {
	Path         string `toml:"path"`
	SheetName    string `toml:"sheet_name"`
	TotalCell    string `toml:"total_cell"`
	PerGroupCell string `toml:"per_group_cell"`
	Anchor       string `toml:"anchor"`
	MaxAttempts  int    `toml:"max_attempts"`
}

// ExportConfig xlsx 보고서 템플릿 (비우면 새 통합문서)
type ExportConfig struct {
	TemplatePath string `toml:"template_path"`
}

// LoadConfigInfo 설정 로드 메타 정보
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 기본 설정
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Storage: StorageConfig{
			Root: "ledgers",
		},
		Ledger: LedgerConfig{
			SheetName: "내역",
		},
		Seating: SeatingConfig{
			Path:         "점심조.xlsx",
			SheetName:    "점심조",
			TotalCell:    "B4",
			PerGroupCell: "C4",
			Anchor:       "B7",
			MaxAttempts:  3,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 실행 파일이 있는 폴더
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrDot() string {
	dir, err := GetExeDir()
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

// LoadConfigWithInfo 실행 파일 옆 config.toml 을 읽는다. 없으면 기본값.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(filepath.Join(exeDirOrDot(), "config.toml"))
}

// LoadConfigFrom 지정 경로의 설정 파일을 읽고 환경 변수 덮어쓰기를 적용한다
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 설정 파일이 없으면 기본값
	default:
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

// 환경 변수 덮어쓰기 (E2E / 로컬 실행용)
func applyEnv(config *AppConfig) {
	if v := os.Getenv("MEALBOOK_STORAGE_ROOT"); v != "" {
		config.Storage.Root = v
	}
	if v := os.Getenv("MEALBOOK_SEATING_PATH"); v != "" {
		config.Seating.Path = v
	}
	if v := os.Getenv("MEALBOOK_EXPORT_TEMPLATE"); v != "" {
		config.Export.TemplatePath = v
	}
}

// LoadConfig config.toml 로드
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 실행 파일 옆 config.toml 에 저장
func SaveConfig(config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDirOrDot(), "config.toml"), data, 0644)
}

// ResolvePath 상대 경로는 실행 파일 폴더 기준
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(exeDirOrDot(), p)
}

// EnsureDataDir 데이터 폴더를 만들고 경로를 돌려준다
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolvePath(config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// JournalDBPath 저널 SQLite 파일 경로
func JournalDBPath(config *AppConfig) string {
	return filepath.Join(ResolvePath(config.Data.DataDir), "mealbook.db")
}

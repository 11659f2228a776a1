// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルはCLIフラグ・環境変数・YAML設定ファイルの読み込みを行います。
//
// 【優先順位】（下ほど優先）
//  1. デフォルト値
//  2. YAML設定ファイル（-config または CONFIG_FILE）
//  3. 環境変数（.env / .env.local も含む）
//  4. CLIフラグ
//
// 【設定グループ】
//   - InputConfig:     ソースレジストリ
//   - FilterConfig:    キーワード／除外ワード
//   - FetchSettings:   HTTP取得・並列数・フォールバック
//   - OutputConfig:    出力（XLSX / JSON / Notion）
//   - EmailModeConfig: メール送信
//   - AccessConfig:    アクセスゲート
//
// =============================================================================
package pipeline

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 設定構造体
// =============================================================================

// PipelineConfig はパイプラインの全設定を保持する
type PipelineConfig struct {
	Input    InputConfig     `yaml:"input"`
	Filter   FilterConfig    `yaml:"filter"`
	Fetch    FetchSettings   `yaml:"fetch"`
	Output   OutputConfig    `yaml:"output"`
	Email    EmailModeConfig `yaml:"email"`
	Access   AccessConfig    `yaml:"access"`
	LogLevel string          `yaml:"log_level" env:"LOG_LEVEL"`
}

// InputConfig は入力ソースに関する設定
type InputConfig struct {
	// SourcesFile は {"sources":[{"url":...}]} 形式のJSON/YAMLファイル
	SourcesFile string `yaml:"sources_file" env:"SOURCES_FILE"`
}

// FilterConfig は検索条件（カンマ区切り）
type FilterConfig struct {
	Keywords string `yaml:"keywords" env:"KEYWORDS"`
	Exclude  string `yaml:"exclude" env:"EXCLUDE_WORDS"`
}

// Spec は FilterSpec に変換する
func (c FilterConfig) Spec() FilterSpec {
	return ParseFilter(c.Keywords, c.Exclude)
}

// FetchSettings はHTTP取得とフォールバック検索の設定
type FetchSettings struct {
	Timeout   time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"FETCH_USER_AGENT"`

	// Workers は同時に取得するソース数（1以下で逐次処理）
	Workers int `yaml:"workers" env:"FETCH_WORKERS"`

	// Fallback はフォールバック検索のモード（"html" | "rss" | "off"）
	Fallback string `yaml:"fallback" env:"FALLBACK_MODE"`
}

// FetchConfig は FetchSettings から FetchConfig を作る
func (s FetchSettings) FetchConfig() FetchConfig {
	cfg := DefaultFetchConfig()
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
		cfg.Client.Timeout = s.Timeout
	}
	if s.UserAgent != "" {
		cfg.UserAgent = s.UserAgent
	}
	return cfg
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	// OutFile はXLSXレポートの保存先
	OutFile string `yaml:"out" env:"REPORT_FILE"`

	// JSONFile が指定された場合、結果をJSONでも保存（"-" で標準出力）
	JSONFile string `yaml:"json" env:"REPORT_JSON"`

	// NotionClip がtrueの場合、Notionに保存
	NotionClip bool `yaml:"notion_clip" env:"NOTION_CLIP"`

	// NotionPageID は新規データベース作成時の親ページID
	NotionPageID string `yaml:"notion_page_id" env:"NOTION_PAGE_ID"`

	// NotionDatabaseID は既存のデータベースID
	NotionDatabaseID string `yaml:"notion_database_id" env:"NOTION_DATABASE_ID"`
}

// EmailModeConfig はメール送信モードに関する設定
//
// SMTPの認証情報は EMAIL_FROM / EMAIL_PASSWORD / EMAIL_TO から読む（email.go）。
type EmailModeConfig struct {
	// SendEmail がtrueの場合、XLSXレポートをメールで送信
	SendEmail bool `yaml:"send_email" env:"SEND_EMAIL"`
}

// AccessConfig はアクセスゲートの設定
type AccessConfig struct {
	// PasswordHash はbcryptハッシュ（空の場合はゲート無効）
	PasswordHash string `yaml:"password_hash" env:"NEWS_RELAY_PASSWORD_HASH"`

	// Password はオペレーターが入力するパスワード（YAMLには書かない）
	Password string `yaml:"-" env:"NEWS_RELAY_PASSWORD"`
}

// =============================================================================
// デフォルト値
// =============================================================================

const (
	DefaultSourcesFile = "sources.json"
	DefaultKeywords    = "wypadek,morderstwo"
	DefaultExclude     = "sport,piłka"
)

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *PipelineConfig {
	return &PipelineConfig{
		Input:  InputConfig{SourcesFile: DefaultSourcesFile},
		Filter: FilterConfig{Keywords: DefaultKeywords, Exclude: DefaultExclude},
		Fetch: FetchSettings{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
			Workers:   1,
			Fallback:  "html",
		},
		Output:   OutputConfig{OutFile: ReportFileName},
		LogLevel: "info",
	}
}

// =============================================================================
// 読み込み
// =============================================================================

// LoadEnvFiles は .env.local と .env を読み込む（存在しない場合は無視）
//
// ENV_FILE が設定されている場合はそのファイルのみを読む。
// godotenv は既存の環境変数を上書きしないので、先に読んだファイルが優先される。
func LoadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfigFile はYAML設定ファイルを cfg に重ねて読み込む
func LoadConfigFile(path string, cfg *PipelineConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ParseFlags はCLIフラグを解析してPipelineConfigを返す
func ParseFlags() *PipelineConfig {
	cfg, err := ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// LoadConfig はフラグなしで設定を読み込む（Lambda用: CONFIG_FILE と環境変数のみ）
func LoadConfig() (*PipelineConfig, error) {
	return ParseArgs(nil, io.Discard)
}

// ParseArgs builds the configuration from defaults, an optional YAML file,
// environment variables and finally args.
func ParseArgs(args []string, errOut io.Writer) (*PipelineConfig, error) {
	cfg := DefaultConfig()

	configPath := configPathFromArgs(args)
	if configPath != "" {
		if err := LoadConfigFile(configPath, cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)

	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var ignored string
	fs.StringVar(&ignored, "config", configPath, "optional: YAML config file")

	// Input flags
	fs.StringVar(&cfg.Input.SourcesFile, "sources", cfg.Input.SourcesFile, "source registry (JSON or YAML)")

	// Filter flags
	fs.StringVar(&cfg.Filter.Keywords, "keywords", cfg.Filter.Keywords, "keywords (comma separated)")
	fs.StringVar(&cfg.Filter.Exclude, "exclude", cfg.Filter.Exclude, "exclude words (comma separated)")

	// Fetch flags
	fs.DurationVar(&cfg.Fetch.Timeout, "timeout", cfg.Fetch.Timeout, "per-request timeout")
	fs.StringVar(&cfg.Fetch.UserAgent, "userAgent", cfg.Fetch.UserAgent, "User-Agent header")
	fs.IntVar(&cfg.Fetch.Workers, "workers", cfg.Fetch.Workers, "sources fetched in parallel (1 = sequential)")
	fs.StringVar(&cfg.Fetch.Fallback, "fallback", cfg.Fetch.Fallback, "fallback search: html|rss|off")

	// Output flags
	fs.StringVar(&cfg.Output.OutFile, "out", cfg.Output.OutFile, "XLSX report path")
	fs.StringVar(&cfg.Output.JSONFile, "json", cfg.Output.JSONFile, "optional: also write results as JSON (\"-\" for stdout)")
	fs.BoolVar(&cfg.Output.NotionClip, "notionClip", cfg.Output.NotionClip, "clip results to Notion database")
	fs.StringVar(&cfg.Output.NotionPageID, "notionPageID", cfg.Output.NotionPageID, "parent page ID for creating new Notion database")
	fs.StringVar(&cfg.Output.NotionDatabaseID, "notionDatabaseID", cfg.Output.NotionDatabaseID, "existing Notion database ID")

	// Email flags
	fs.BoolVar(&cfg.Email.SendEmail, "sendEmail", cfg.Email.SendEmail, "send the XLSX report via email")

	// Access flags
	fs.StringVar(&cfg.Access.Password, "password", cfg.Access.Password, "access password (or NEWS_RELAY_PASSWORD)")

	fs.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPathFromArgs は -config の値を先に取り出す（フラグ解析前にYAMLを読むため）
func configPathFromArgs(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("CONFIG_FILE")
}

// -----------------------------------------------------------------------------
// 環境変数の上書き
// -----------------------------------------------------------------------------

// applyEnvOverrides は `env` タグを持つフィールドを環境変数で上書きする
func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}
		tag := t.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		if val, ok := os.LookupEnv(tag); ok && val != "" {
			setFieldFromString(field, val)
		}
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(val); err == nil {
			field.SetBool(b)
		}
	}
}

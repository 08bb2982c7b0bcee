// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "GogakuSuite"
	AppVersion = "1.2.0"
)

// デフォルト設定値
const (
	DefaultServerPort       = ":8080"
	DefaultLogLevel         = "info"
	DefaultFreeLimit        = 5
	DefaultCheckoutPriceJPY = 980
	DefaultAccessTokenTTL   = 1 * time.Hour
	DefaultAdminCookieTTL   = 24 * time.Hour
)

// 上流ブログCMSのデフォルト設定
const (
	DefaultContentBaseURL    = "https://blog.gogaku-suite.example.com"
	DefaultContentCategoryID = 5
)

// 音読課題の座標範囲
const (
	OndokuPeriodMax = 7 // 期 0..7
	OndokuItemMax   = 9 // 課題 0..9
)

// 音声アップロードの上限
const MaxAudioUploadBytes = 50 << 20 // 50MB

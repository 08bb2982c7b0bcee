// internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name        string `mapstructure:"name"`
		FrontendURL string `mapstructure:"frontend_url"`
		// 無料で解答できる問題数。これを超えると購入者のみ
		FreeLimit int `mapstructure:"free_limit"`
		// 買い切り価格（円）
		CheckoutPriceJPY int64 `mapstructure:"checkout_price_jpy"`
	} `mapstructure:"app"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	JWT struct {
		SecretKey      string        `mapstructure:"secret_key"`
		AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	} `mapstructure:"jwt"`
	Admin struct {
		// 管理画面クッキーを配布するドメイン (例: .example.com)
		CookieDomain string        `mapstructure:"cookie_domain"`
		CookieTTL    time.Duration `mapstructure:"cookie_ttl"`
	} `mapstructure:"admin"`
	Mailer struct {
		Type string `mapstructure:"type"` // "ses", "smtp", "log"
	} `mapstructure:"mailer"`
	SMTP SMTPConfig `mapstructure:"smtp"`
	SES  SESConfig  `mapstructure:"ses"`
	Storage struct {
		Type          string `mapstructure:"type"` // "s3", "log"
		Bucket        string `mapstructure:"bucket"`
		Region        string `mapstructure:"region"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"storage"`
	Payment struct {
		StripeSecretKey string `mapstructure:"stripe_secret_key"`
		WebhookSecret   string `mapstructure:"webhook_secret"`
		SuccessURL      string `mapstructure:"success_url"`
		CancelURL       string `mapstructure:"cancel_url"`
	} `mapstructure:"payment"`
	Job struct {
		// 定期実行ジョブ呼び出し用の共有シークレット
		Secret string `mapstructure:"secret"`
	} `mapstructure:"job"`
	Content struct {
		BaseURL    string `mapstructure:"base_url"`
		CategoryID int    `mapstructure:"category_id"`
	} `mapstructure:"content"`
	Pdf struct {
		// 日本語グリフを含むTTFフォント。未設定時は内蔵コアフォントで描画
		FontPath string `mapstructure:"font_path"`
	} `mapstructure:"pdf"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" or "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	From            string `mapstructure:"from"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("payment.stripe_secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("payment.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("ses.access_key_id", "AWS_ACCESS_KEY_ID")
	viper.BindEnv("ses.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	viper.BindEnv("job.secret", "JOB_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.App.Name == "" {
		Cfg.App.Name = AppName
	}
	if Cfg.Server.Port == "" {
		log.Println("Server port not set, using default ':8080'")
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.App.FreeLimit <= 0 {
		Cfg.App.FreeLimit = DefaultFreeLimit
	}
	if Cfg.App.CheckoutPriceJPY <= 0 {
		Cfg.App.CheckoutPriceJPY = DefaultCheckoutPriceJPY
	}
	if Cfg.JWT.AccessTokenTTL <= 0 {
		Cfg.JWT.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if Cfg.Admin.CookieTTL <= 0 {
		Cfg.Admin.CookieTTL = DefaultAdminCookieTTL
	}
	if Cfg.Content.BaseURL == "" {
		Cfg.Content.BaseURL = DefaultContentBaseURL
	}
	if Cfg.Content.CategoryID <= 0 {
		Cfg.Content.CategoryID = DefaultContentCategoryID
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	if Cfg.JWT.SecretKey == "" {
		log.Println("Warning: JWT secret key is not set in config.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Free Limit: %d", Cfg.App.FreeLimit)
	log.Printf("Mailer Type: %s", Cfg.Mailer.Type)
	log.Printf("Storage Type: %s", Cfg.Storage.Type)

	return nil
}

package env

import (
	"os"
)

const (
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	UserSecretKey    = "USER_SECRET"
	AuthRedisURL     = "AUTH_REDIS_URL"
	AuthRedisPass    = "AUTH_REDIS_PASS"
	BotAPIKey        = "BOT_API_KEY"
	ListenAddr       = "LISTEN_ADDR"
	TelegramAPIBase  = "TELEGRAM_API_BASE"
	WebUrl           = "WEB_URL"
)

// Require panics when a variable the server cannot run without is missing.
// Called once from main rather than at import time so test binaries can
// import packages that read env lazily.
func Require() {
	required := []string{
		AWSRegion,
		AWSID,
		AWSSecret,
		UserSecretKey,
		AuthRedisURL,
		BotAPIKey,
		WebUrl,
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			panic("env: required environment variable not set: " + key)
		}
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

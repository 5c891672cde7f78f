package config

const (
	KeyFlomoAPIURL    = "flomo_api_url"
	KeyRequestTimeout = "flomo_request_timeout"
	KeyLogLevel       = "log_level"
	KeyHTTPAddr       = "http_addr"
)

const (
	dotEnvFile        = ".env"
	defaultLogLevel   = "info"
	defaultReqTimeout = "30s"
)

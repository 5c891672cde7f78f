package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddFlags registers the persistent flags shared by every flomo-mcp command.
// Flag names equal the viper keys so BindPFlags needs no remapping.
func AddFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String(KeyFlomoAPIURL, "", "flomo incoming webhook URL (overrides FLOMO_API_URL)")
	flags.String(KeyRequestTimeout, defaultReqTimeout, "Timeout for the outbound webhook request")
	flags.String(KeyLogLevel, defaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String(KeyHTTPAddr, "", "Serve MCP over streamable HTTP on this address instead of stdio")
}

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(dotEnvFile)
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyRequestTimeout, defaultReqTimeout)
	viper.SetDefault(KeyLogLevel, defaultLogLevel)
}

func FlomoAPIURL() string    { return viper.GetString(KeyFlomoAPIURL) }
func RequestTimeout() string { return viper.GetString(KeyRequestTimeout) }
func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func HTTPAddr() string       { return viper.GetString(KeyHTTPAddr) }

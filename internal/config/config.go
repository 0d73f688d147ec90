package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Tools   ToolsConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gateway, err := loadGatewayConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Gateway: gateway, Tools: loadToolsConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string
	AllowOrigin     string
	ShutdownTimeout time.Duration
}

// loadServerConfig 解析服务器监听地址与跨域设置。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		addr = port
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	shutdown, err := parseOptionalIntEnv("SHUTDOWN_TIMEOUT")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdownTimeout := 10 * time.Second
	if shutdown != nil && *shutdown > 0 {
		shutdownTimeout = time.Duration(*shutdown) * time.Second
	}

	return ServerConfig{
		Addr:            addr,
		AllowOrigin:     getEnvOrDefault("CORS_ALLOW_ORIGIN", "*"),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// Provider 标识大模型网关的接入方式。
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderArk    Provider = "ark"
)

// GatewayConfig 描述大模型网关相关配置。
type GatewayConfig struct {
	Provider Provider
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Ark      ArkConfig
}

// ArkConfig holds the Volcengine Ark credentials used when Provider is "ark".
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	RetryTimes  *int
}

// Enabled 表示是否提供了必需的密钥。
func (c GatewayConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Ark.Model != "" && (c.Ark.APIKey != "" || (c.Ark.AccessKey != "" && c.Ark.SecretKey != ""))
	default:
		return c.APIKey != "" && c.Model != ""
	}
}

// MissingReason explains why Enabled reports false.
func (c GatewayConfig) MissingReason() string {
	switch c.Provider {
	case ProviderArk:
		return "ARK_MODEL and ARK_API_KEY (or ARK_ACCESS_KEY + ARK_SECRET_KEY) are not configured"
	default:
		return "GATEWAY_API_KEY is not configured"
	}
}

func loadGatewayConfig() (GatewayConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("LLM_PROVIDER", string(ProviderOpenAI))))
	switch provider {
	case ProviderOpenAI, ProviderArk:
	default:
		return GatewayConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q: expected openai or ark", provider)
	}

	timeout, err := parseOptionalIntEnv("GATEWAY_TIMEOUT")
	if err != nil {
		return GatewayConfig{}, err
	}
	timeoutSeconds := 60
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	apiKey := strings.TrimSpace(os.Getenv("GATEWAY_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("LOVABLE_API_KEY"))
	}

	ark, err := loadArkConfig()
	if err != nil {
		return GatewayConfig{}, err
	}

	return GatewayConfig{
		Provider: provider,
		BaseURL:  getEnvOrDefault("GATEWAY_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		APIKey:   apiKey,
		Model:    getEnvOrDefault("GATEWAY_MODEL", "google/gemini-2.5-flash"),
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		Ark:      ark,
	}, nil
}

func loadArkConfig() (ArkConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ArkConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return ArkConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return ArkConfig{}, err
	}

	retryTimes, err := parseOptionalIntEnv("ARK_RETRY_TIMES")
	if err != nil {
		return ArkConfig{}, err
	}

	return ArkConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		RetryTimes:  retryTimes,
	}, nil
}

// ToolsConfig 描述数据查询工具的配置。
type ToolsConfig struct {
	ProductDetailsPath string
}

func loadToolsConfig() ToolsConfig {
	return ToolsConfig{
		ProductDetailsPath: getEnvOrDefault("PRODUCT_DETAILS_PATH", "data/product_details.json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

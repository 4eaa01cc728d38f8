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
	Server ServerConfig
	Chat   ChatConfig
	Voice  VoiceConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	voice, err := loadVoiceConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat, Voice: voice}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	shutdown, err := parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, ShutdownTimeout: shutdown}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, ShutdownTimeout: shutdown}, nil
}

// ChatConfig controls conversation behaviour and transcript rendering.
type ChatConfig struct {
	ReplyDelay      time.Duration
	AssistantName   string
	RulesFile       string
	Timezone        string
	Location        *time.Location
	GreetingEnabled bool
	EventBuffer     int
}

func loadChatConfig() (ChatConfig, error) {
	delay, err := parseDurationEnv("CHAT_REPLY_DELAY", 1500*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}

	greeting, err := parseBoolEnv("CHAT_GREETING_ENABLED", true)
	if err != nil {
		return ChatConfig{}, err
	}

	buffer := 32
	if override, err := parseOptionalIntEnv("EVENT_BUFFER_SIZE"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			buffer = 1
		} else {
			buffer = *override
		}
	}

	timezone := getEnvOrDefault("CHAT_TRANSCRIPT_TIMEZONE", "Local")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_TRANSCRIPT_TIMEZONE value %q: %w", timezone, err)
	}

	return ChatConfig{
		ReplyDelay:      delay,
		AssistantName:   getEnvOrDefault("CHAT_ASSISTANT_NAME", "HEVA Bot"),
		RulesFile:       strings.TrimSpace(os.Getenv("CHAT_RULES_FILE")),
		Timezone:        timezone,
		Location:        loc,
		GreetingEnabled: greeting,
		EventBuffer:     buffer,
	}, nil
}

// VoiceConfig 描述模拟语音输入的配置。
type VoiceConfig struct {
	CaptureDelay    time.Duration
	SampleUtterance string
}

func loadVoiceConfig() (VoiceConfig, error) {
	delay, err := parseDurationEnv("VOICE_CAPTURE_DELAY", 2*time.Second)
	if err != nil {
		return VoiceConfig{}, err
	}

	return VoiceConfig{
		CaptureDelay:    delay,
		SampleUtterance: getEnvOrDefault("VOICE_SAMPLE_UTTERANCE", "How can I apply for funding?"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
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

// parseDurationEnv 接受 Go duration 字符串（如 "1500ms"）或毫秒整数。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	if ms, err := strconv.Atoi(value); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, value)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, value)
	}
	return val, nil
}

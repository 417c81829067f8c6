// ============================================================================
// SAFE LOGGING - masks personal and financial data in production
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction enables masking of sensitive values.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = parseLogLevel(os.Getenv("LOG_LEVEL"))
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func parseLogLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	amountWithCurrencyRegex = regexp.MustCompile(`(\$|USD\s?)\d+([.,]\d{1,2})?`)

	// Plaid access tokens look like access-sandbox-<uuid>.
	plaidTokenRegex = regexp.MustCompile(`(access|public|link)-(sandbox|development|production)-[0-9a-fA-F-]+`)

	cardRegex = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// ============================================================================
// MASKING
// ============================================================================

// MaskString hides sensitive data in a log line when running in production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	return maskAll(input)
}

func maskAll(input string) string {
	result := plaidTokenRegex.ReplaceAllString(input, "***token***")
	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = cardRegex.ReplaceAllString(result, "****-****-****-****")
	result = amountWithCurrencyRegex.ReplaceAllString(result, "$***")
	result = uuidRegex.ReplaceAllStringFunc(result, shortID)
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return "***"
}

// MaskID keeps the first 8 characters of an id
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// LEVELLED LOGGING
// ============================================================================

func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

func LogAuthAction(action string, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - Email: %s Status: %s", action, MaskEmail(email), status)
}

// LogBankingAction logs a Plaid item operation without exposing ids.
func LogBankingAction(action string, itemID string, userID string) {
	log.Printf("[Plaid] %s - Item: %s User: %s", action, MaskID(itemID), MaskID(userID))
}

func LogSyncResult(userID string, items, fetched, inserted int) {
	log.Printf("[Sync] User: %s Items: %d Fetched: %d New: %d", MaskID(userID), items, fetched, inserted)
}

func LogAPIRequest(method string, path string, userID string, statusCode int, duration string) {
	if IsProduction {
		path = uuidRegex.ReplaceAllStringFunc(path, shortID)
	}
	log.Printf("[API] %s %s - User: %s Status: %d Duration: %s",
		method, path, MaskID(userID), statusCode, duration)
}

func LogWebSocket(action string, userID string) {
	log.Printf("[WS] %s - User: %s", action, MaskID(userID))
}

// ============================================================================
// STARTUP
// ============================================================================

// AppName names the service in startup logs and authenticator apps.
const AppName = "PocketPilot"

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

func LogStartup(appName string, version string, port string, storeDriver string) {
	log.Printf("🚀 %s v%s starting...", appName, version)
	log.Printf("   Mode: %s", GetEnvMode())
	log.Printf("   Port: %s", port)
	log.Printf("   Store: %s", storeDriver)
	log.Printf("   Log Level: %d", LogLevel)
	if IsProduction {
		log.Printf("   ⚠️  Production mode: sensitive data will be masked in logs")
	}
}

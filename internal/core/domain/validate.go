package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const DefaultMaxFileSizeBytes = 20 * 1024 * 1024

type ValidationResult struct {
	Valid         bool
	ErrorMessage  string
	ErrorScenario ErrorScenario
}

var domainPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidateFileName checks that the name carries a supported extension.
func ValidateFileName(fileName string) ValidationResult {
	if strings.TrimSpace(fileName) == "" {
		return ValidationResult{
			ErrorMessage:  "file name is empty",
			ErrorScenario: ScenarioUnsupportedFormat,
		}
	}

	ext := extensionOf(fileName)
	if ext == "" {
		return unsupportedFormatResult()
	}
	if _, ok := FormatFromExtension(ext); !ok {
		return unsupportedFormatResult()
	}
	return ValidationResult{Valid: true}
}

func ValidateFileSize(fileSize, maxBytes int64) ValidationResult {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSizeBytes
	}
	if fileSize < 0 {
		return ValidationResult{
			ErrorMessage:  "file size cannot be negative",
			ErrorScenario: ScenarioFileTooLarge,
		}
	}
	if fileSize > maxBytes {
		return ValidationResult{
			ErrorMessage:  fmt.Sprintf("file too large: maximum size is %dMB", maxBytes/(1024*1024)),
			ErrorScenario: ScenarioFileTooLarge,
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateFile combines name and size checks; the name check wins.
func ValidateFile(fileName string, fileSize, maxBytes int64) ValidationResult {
	if res := ValidateFileName(fileName); !res.Valid {
		return res
	}
	return ValidateFileSize(fileSize, maxBytes)
}

func ValidateURL(raw string) ValidationResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return urlInvalidResult("url is empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return urlInvalidResult("malformed url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return urlInvalidResult("url must start with http:// or https://")
	}
	if parsed.Host == "" {
		return urlInvalidResult("url has no host")
	}
	if !validDomain(parsed.Hostname()) {
		return urlInvalidResult("invalid domain name")
	}
	return ValidationResult{Valid: true}
}

func validDomain(host string) bool {
	if host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	return domainPattern.MatchString(host)
}

func extensionOf(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

func unsupportedFormatResult() ValidationResult {
	return ValidationResult{
		ErrorMessage:  "unsupported file format, supported formats: " + SupportedFormatsList(),
		ErrorScenario: ScenarioUnsupportedFormat,
	}
}

func urlInvalidResult(message string) ValidationResult {
	return ValidationResult{
		ErrorMessage:  message,
		ErrorScenario: ScenarioURLInvalid,
	}
}

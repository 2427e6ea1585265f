// Package env reads configuration overrides from the process environment
// and an optional .env file.
//
// Variables named SERCHA_RAG_<SECTION>_<KEY> map to the config key
// "<section>.<key>", so SERCHA_RAG_RETRIEVAL_MIN_SIMILARITY overrides
// retrieval.min_similarity. The vendor variables OPENAI_API_KEY and
// ANTHROPIC_API_KEY map to "openai.api_key" and "anthropic.api_key".
package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Prefix marks variables that override config keys.
const Prefix = "SERCHA_RAG_"

// vendorKeys maps provider SDK variables to provider-wide credential keys.
var vendorKeys = map[string]string{
	"OPENAI_API_KEY":    "openai.api_key",
	"ANTHROPIC_API_KEY": "anthropic.api_key",
}

// Load reads .env files into the process environment. Variables already set
// are left alone. Missing files are not an error.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		logger.Debug("loaded environment from %s", f)
	}
	return nil
}

// Overrides returns config overrides from the current environment.
func Overrides() map[string]string {
	return Parse(os.Environ())
}

// Parse converts KEY=VALUE pairs into config overrides. Empty values are skipped.
func Parse(environ []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if key, ok := vendorKeys[name]; ok {
			out[key] = value
			continue
		}
		if key, ok := configKey(name); ok {
			out[key] = value
		}
	}
	return out
}

// configKey turns SERCHA_RAG_RETRIEVAL_TOP_K into retrieval.top_k.
// Sections are single words, so the first underscore is the separator.
func configKey(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, Prefix)
	if !ok {
		return "", false
	}
	section, key, ok := strings.Cut(strings.ToLower(rest), "_")
	if !ok || section == "" || key == "" {
		return "", false
	}
	return section + "." + key, true
}

package syntax

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies the grammar a file is parsed with.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

var extensions = map[string]Language{
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// LanguageForFile picks the grammar from the file extension.
func LanguageForFile(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// IsSupported reports whether path has an extension the linter understands.
func IsSupported(path string) bool {
	_, ok := LanguageForFile(path)
	return ok
}

// Extensions returns every supported file extension.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	return exts
}

// ParseLanguage converts a user supplied name ("js", "ts", "tsx", ...) to a Language.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "js", "jsx", "javascript":
		return JavaScript, nil
	case "ts", "typescript":
		return TypeScript, nil
	case "tsx":
		return TSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

func (l Language) grammar() (*sitter.Language, error) {
	switch l {
	case JavaScript:
		return javascript.GetLanguage(), nil
	case TypeScript:
		return typescript.GetLanguage(), nil
	case TSX:
		return tsx.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(l))
}

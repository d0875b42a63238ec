// Package score provides the pure text-scoring primitives: feature
// extraction, content similarity, and importance scoring. Everything here is
// deterministic and stateless: no storage, no I/O.
package score

import (
	"regexp"
	"strings"
)

// Features is the comparable bundle extracted from a piece of content.
type Features struct {
	Words      map[string]bool // lowercase word set
	Entities   map[string]bool // file paths, call-like tokens, CamelCase identifiers
	Concepts   map[string]bool // fixed technical vocabulary hits
	CodeTokens map[string]bool // language keywords present as standalone tokens

	HasCode     bool
	HasQuestion bool
	HasCommand  bool
}

// conceptVocabulary is the fixed set of technical terms recognized as concepts.
var conceptVocabulary = map[string]bool{
	"api": true, "architecture": true, "async": true, "authentication": true,
	"backend": true, "bug": true, "cache": true, "cli": true, "compiler": true,
	"concurrency": true, "config": true, "container": true, "database": true,
	"debug": true, "dependency": true, "deploy": true, "deployment": true,
	"docker": true, "encryption": true, "endpoint": true, "error": true,
	"frontend": true, "framework": true, "function": true, "index": true,
	"interface": true, "json": true, "latency": true, "library": true,
	"logging": true, "memory": true, "migration": true, "module": true,
	"network": true, "optimization": true, "performance": true, "pipeline": true,
	"protocol": true, "query": true, "queue": true, "refactor": true,
	"regression": true, "rest": true, "schema": true, "security": true,
	"server": true, "service": true, "sql": true, "storage": true,
	"testing": true, "thread": true, "timeout": true, "transaction": true,
	"websocket": true, "yaml": true,
}

// codeKeywords are language keywords counted when they appear as standalone tokens.
var codeKeywords = map[string]bool{
	"func": true, "def": true, "class": true, "struct": true, "return": true,
	"import": true, "package": true, "var": true, "const": true, "if": true,
	"else": true, "for": true, "while": true, "switch": true, "case": true,
	"async": true, "await": true, "lambda": true, "nil": true, "null": true,
	"true": true, "false": true, "try": true, "catch": true, "except": true,
}

// commandVerbs signal an imperative instruction when they open a sentence.
var commandVerbs = map[string]bool{
	"add": true, "build": true, "change": true, "create": true, "delete": true,
	"deploy": true, "fix": true, "implement": true, "install": true,
	"make": true, "remove": true, "rename": true, "run": true, "update": true,
	"use": true, "write": true,
}

var (
	filePathRe   = regexp.MustCompile(`[\w./~-]+\.[a-zA-Z]{1,5}\b|(?:/[\w.-]+){2,}`)
	funcCallRe   = regexp.MustCompile(`\b[\w.]+\(`)
	camelCaseRe  = regexp.MustCompile(`\b[a-z]+[A-Z]\w*\b|\b[A-Z][a-z]+[A-Z]\w*\b`)
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z][\w-]*\b`)
	inlineCodeRe = regexp.MustCompile("`[^`]+`")
)

// Extract turns raw content into a feature bundle. Pure and deterministic;
// an empty string yields empty sets and cleared flags.
func Extract(content string) Features {
	f := Features{
		Words:      make(map[string]bool),
		Entities:   make(map[string]bool),
		Concepts:   make(map[string]bool),
		CodeTokens: make(map[string]bool),
	}
	if strings.TrimSpace(content) == "" {
		return f
	}

	for _, tok := range Tokenize(content) {
		f.Words[tok] = true
		if conceptVocabulary[tok] {
			f.Concepts[tok] = true
		}
		if codeKeywords[tok] {
			f.CodeTokens[tok] = true
		}
	}

	for _, m := range filePathRe.FindAllString(content, -1) {
		// Bare numbers like "3.14" match the path pattern; skip them.
		if strings.IndexFunc(m, func(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }) < 0 {
			continue
		}
		f.Entities[strings.ToLower(m)] = true
	}
	for _, m := range funcCallRe.FindAllString(content, -1) {
		f.Entities[strings.ToLower(strings.TrimSuffix(m, "("))] = true
	}
	for _, m := range camelCaseRe.FindAllString(content, -1) {
		f.Entities[strings.ToLower(m)] = true
	}
	// Capitalized words away from a sentence start read as proper nouns.
	for _, loc := range properNounRe.FindAllStringIndex(content, -1) {
		if sentenceInitial(content, loc[0]) {
			continue
		}
		f.Entities[strings.ToLower(content[loc[0]:loc[1]])] = true
	}

	f.HasCode = strings.Contains(content, "```") || inlineCodeRe.MatchString(content) ||
		funcCallRe.MatchString(content) || len(f.CodeTokens) >= 2
	f.HasQuestion = strings.Contains(content, "?")
	f.HasCommand = startsWithCommand(content)

	return f
}

// sentenceInitial reports whether the byte at pos begins a sentence.
func sentenceInitial(content string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch content[i] {
		case ' ', '\t':
			continue
		case '.', '!', '?', '\n', ';':
			return true
		default:
			return false
		}
	}
	return true
}

// startsWithCommand reports whether any sentence opens with an imperative verb.
func startsWithCommand(content string) bool {
	for _, sentence := range strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '\n'
	}) {
		fields := strings.Fields(sentence)
		if len(fields) > 0 && commandVerbs[strings.ToLower(fields[0])] {
			return true
		}
	}
	return false
}

// Tokenize splits text into lowercase tokens, stripping punctuation.
// Single-character tokens are skipped as noise.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 1 {
				tokens = append(tokens, current.String())
			}
			current.Reset()
		}
	}
	if current.Len() > 1 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

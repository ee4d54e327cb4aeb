// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package promptassembly builds the final system prompt text sent to the
// LLM by concatenating, in a fixed order, a base prompt, a mode section, a
// tagged context section and an optional per-role section. Assembly is
// plain string concatenation - no templating engine.
package promptassembly

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// promptTokenEncoding names the tiktoken-go encoding used to estimate
// assembled prompt size for trimming decisions.
const promptTokenEncoding = "cl100k_base"

// Mode selects which prose block describes the agent's operating mode.
type Mode string

// Allowed Mode values.
const (
	ModeFast   Mode = "fast"
	ModeDeep   Mode = "deep"
	ModeHybrid Mode = "hybrid"
)

var modeSections = map[Mode]string{
	ModeFast: "You are operating in Fast mode: favor short, direct answers and " +
		"the smallest tool calls that resolve the request. Skip exploratory " +
		"investigation unless the user's request is ambiguous.",
	ModeDeep: "You are operating in Deep mode: investigate thoroughly before " +
		"acting. Read surrounding context, consider edge cases, and verify " +
		"assumptions with tool calls before producing a final answer.",
	ModeHybrid: "You are operating in Hybrid mode: start with a fast pass, and " +
		"escalate to deeper investigation only for the parts of the request " +
		"that are ambiguous, risky, or where the fast pass turned up " +
		"conflicting information.",
}

// Registry holds named context sections that Assemble can look up by tag.
// A fresh Registry starts empty; callers register the sections relevant to
// their deployment.
type Registry struct {
	contexts map[string]string
	roles    map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		contexts: make(map[string]string),
		roles:    make(map[string]string),
	}
}

// RegisterContext associates tag with a context section's prose.
func (r *Registry) RegisterContext(tag, text string) {
	r.contexts[tag] = text
}

// RegisterRole associates role with a role section's prose.
func (r *Registry) RegisterRole(role, text string) {
	r.roles[role] = text
}

// Assemble concatenates the base prompt, the mode section, the context
// section named by contextTag, and - if role is non-empty and registered -
// the role section, each separated by a blank line.
func (r *Registry) Assemble(base string, mode Mode, contextTag string, role string) (string, error) {
	modeSection, ok := modeSections[mode]
	if !ok {
		return "", fmt.Errorf("promptassembly: unknown mode %q", mode)
	}

	contextSection, ok := r.contexts[contextTag]
	if !ok {
		return "", fmt.Errorf("promptassembly: unknown context tag %q", contextTag)
	}

	sections := []string{base, modeSection, contextSection}
	if role != "" {
		roleSection, ok := r.roles[role]
		if !ok {
			return "", fmt.Errorf("promptassembly: unknown role %q", role)
		}
		sections = append(sections, roleSection)
	}

	result := sections[0]
	for _, s := range sections[1:] {
		result += "\n\n" + s
	}
	return result, nil
}

// AssembleWithBudget behaves like Assemble, but truncates the context
// section (the part most likely to grow unbounded - file contents, search
// results) so the assembled prompt's estimated token count stays at or
// below maxTokens. The base, mode, and role sections are never trimmed: when
// they alone exceed maxTokens, the context section is reduced to the
// truncation marker and the result still exceeds maxTokens.
func (r *Registry) AssembleWithBudget(base string, mode Mode, contextTag string, role string, maxTokens int) (string, error) {
	full, err := r.Assemble(base, mode, contextTag, role)
	if err != nil {
		return "", err
	}
	if maxTokens <= 0 {
		return full, nil
	}

	enc, err := tiktoken.GetEncoding(promptTokenEncoding)
	if err != nil {
		return full, nil // Can't estimate; ship the untrimmed prompt.
	}
	if len(enc.Encode(full, nil, nil)) <= maxTokens {
		return full, nil
	}

	const truncationMarker = "\n\n[context truncated to fit the token budget]"
	contextSection := r.contexts[contextTag]
	overage := len(enc.Encode(contextSection, nil, nil)) - (len(enc.Encode(full, nil, nil)) - maxTokens) - len(enc.Encode(truncationMarker, nil, nil))
	trimmedContext := truncateToTokens(enc, contextSection, overage)

	withoutContext := make(map[string]string, len(r.contexts))
	for k, v := range r.contexts {
		withoutContext[k] = v
	}
	scratch := &Registry{contexts: withoutContext, roles: r.roles}
	scratch.contexts[contextTag] = trimmedContext + truncationMarker
	return scratch.Assemble(base, mode, contextTag, role)
}

// truncateToTokens returns the longest prefix of text whose encoding is at
// most maxTokens tokens long.
func truncateToTokens(enc *tiktoken.Tiktoken, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

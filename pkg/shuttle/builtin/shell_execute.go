// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/teradata-labs/bridge/internal/shellstate"
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

const (
	// DefaultShellTimeout is the default execution timeout (5 minutes).
	DefaultShellTimeout = 300

	// MaxShellTimeout is the maximum allowed timeout (10 minutes).
	MaxShellTimeout = 600

	// DefaultMaxOutputBytes limits output size to prevent memory issues (1MB).
	DefaultMaxOutputBytes = 1024 * 1024
)

// ShellExecuteTool executes shell commands in a persistent session: the
// working directory and exported environment variables survive across
// separate calls. To change directory, run "cd path" as a standalone
// command; "cd" chained with "&&" runs in a subshell and does not persist.
type ShellExecuteTool struct {
	state *shellstate.State
}

// NewShellExecuteTool creates a new shell execution tool bound to the
// process-wide persistent shell state. baseDir is accepted for interface
// compatibility with the other builtin tools but unused: the working
// directory is entirely governed by shellstate, seeded from the process cwd.
func NewShellExecuteTool(baseDir string) *ShellExecuteTool {
	_ = baseDir
	return &ShellExecuteTool{state: shellstate.Get()}
}

func (t *ShellExecuteTool) Name() string {
	return "run_command"
}

func (t *ShellExecuteTool) Description() string {
	return `Executes shell commands in a persistent session. Maintains current working directory and environment variables across calls.

IMPORTANT: To change directory, run 'cd path' as a stand-alone command. 'cd' inside a chain (e.g. 'mkdir foo && cd foo') will NOT persist.

Supports bash/sh on Unix and PowerShell/cmd on Windows.`
}

func (t *ShellExecuteTool) InputSchema() *shuttle.JSONSchema {
	maxTimeout := float64(MaxShellTimeout)
	minTimeout := float64(1)
	return shuttle.NewObjectSchema(
		"Parameters for shell command execution",
		map[string]*shuttle.JSONSchema{
			"command": shuttle.NewStringSchema("Shell command to execute, e.g. 'ls -la', 'cd ./src', 'export VAR=value' (required)"),
			"timeout_seconds": shuttle.NewNumberSchema(
				"Maximum execution time in seconds (default: 300, max: 600)",
			).WithDefault(DefaultShellTimeout).
				WithRange(&minTimeout, &maxTimeout),
			"shell": shuttle.NewStringSchema(
				"Shell to use (default: auto-detect, bash/sh on Unix, powershell/cmd on Windows)",
			).WithEnum("default", "bash", "sh", "powershell", "cmd").
				WithDefault("default"),
			"max_output_bytes": shuttle.NewNumberSchema(
				"Maximum output size in bytes (default: 1048576 = 1MB)",
			).WithDefault(DefaultMaxOutputBytes),
		},
		[]string{"command"},
	)
}

func (t *ShellExecuteTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	command, ok := params["command"].(string)
	if !ok || strings.TrimSpace(command) == "" {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "INVALID_PARAMS",
				Message:    "command is required",
				Suggestion: "Provide a shell command to execute (e.g., 'ls -la' or 'echo hello')",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}
	command = strings.TrimSpace(command)

	timeoutSeconds := DefaultShellTimeout
	if ts, ok := params["timeout_seconds"].(float64); ok {
		timeoutSeconds = int(ts)
		if timeoutSeconds < 1 {
			timeoutSeconds = 1
		}
		if timeoutSeconds > MaxShellTimeout {
			timeoutSeconds = MaxShellTimeout
		}
	}

	shellType := "default"
	if st, ok := params["shell"].(string); ok && st != "" {
		shellType = st
	}

	maxOutputBytes := int64(DefaultMaxOutputBytes)
	if mob, ok := params["max_output_bytes"].(float64); ok && mob > 0 {
		maxOutputBytes = int64(mob)
	}

	if err := checkCommandTokenSize(command); err != nil {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "COMMAND_TOO_LARGE",
				Message:    err.Error(),
				Suggestion: "Break the operation into smaller chunks. Instead of writing a 10MB file at once, create sections separately and append them.",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	// A standalone cd/export/set is handled in-process against persistent
	// state rather than forwarded to a throwaway subshell.
	if handled, output, err := t.state.HandleBuiltin(command); handled {
		if err != nil {
			return &shuttle.Result{
				Success: false,
				Error: &shuttle.Error{
					Code:    "SHELL_BUILTIN_FAILED",
					Message: err.Error(),
				},
				ExecutionTimeMs: time.Since(start).Milliseconds(),
			}, nil
		}
		cwd, _ := t.state.Snapshot()
		return &shuttle.Result{
			Success: true,
			Data: map[string]interface{}{
				"stdout":      output,
				"stderr":      "",
				"exit_code":   0,
				"working_dir": cwd,
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	cwd, _ := t.state.Snapshot()

	if isBlockedWorkingDir(cwd) {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "UNSAFE_PATH",
				Message:    fmt.Sprintf("Cannot execute commands in system directory: %s", cwd),
				Suggestion: "cd into your project directory or user data directories first",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	shellBinary, shellArgs, actualShellType, err := detectShell(shellType, command)
	if err != nil {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "SHELL_NOT_FOUND",
				Message:    fmt.Sprintf("Shell not found: %v", err),
				Suggestion: "Ensure bash/sh (Unix) or PowerShell/cmd (Windows) is installed",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	cmd := exec.Command(shellBinary, shellArgs...) // #nosec G204 -- command comes from the agent's own tool call, not untrusted input
	cmd.Dir = cwd
	cmd.Env = t.state.Environ()

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return &shuttle.Result{
			Success:         false,
			Error:           &shuttle.Error{Code: "EXECUTION_FAILED", Message: fmt.Sprintf("Failed to create stdout pipe: %v", err)},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return &shuttle.Result{
			Success:         false,
			Error:           &shuttle.Error{Code: "EXECUTION_FAILED", Message: fmt.Sprintf("Failed to create stderr pipe: %v", err)},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	if err := cmd.Start(); err != nil {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "EXECUTION_FAILED",
				Message:    fmt.Sprintf("Failed to start command: %v", err),
				Suggestion: "Check command syntax and ensure required executables are available",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	var stdoutLines, stderrLines []string
	var outputBytes int64
	var outputErr error
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)

	readStream := func(pipe *bufio.Reader, lines *[]string) {
		defer wg.Done()
		scanner := bufio.NewScanner(pipe)
		buf := make([]byte, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			outputBytes += int64(len(line)) + 1
			if outputBytes > maxOutputBytes {
				outputErr = fmt.Errorf("output exceeded maximum size (%d bytes)", maxOutputBytes)
				mu.Unlock()
				break
			}
			*lines = append(*lines, line)
			mu.Unlock()
		}
	}

	go readStream(bufio.NewReader(stdoutPipe), &stdoutLines)
	go readStream(bufio.NewReader(stderrPipe), &stderrLines)

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var waitErr error
	timedOut := false

	timer := time.NewTimer(time.Duration(timeoutSeconds) * time.Second)
	defer timer.Stop()

	killAndDrain := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		select {
		case waitErr = <-waitDone:
		case <-time.After(500 * time.Millisecond):
		}
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	select {
	case waitErr = <-waitDone:
		wg.Wait()
	case <-timer.C:
		timedOut = true
		killAndDrain()
	case <-ctx.Done():
		timedOut = true
		killAndDrain()
	}

	if outputErr != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "OUTPUT_OVERFLOW",
				Message:    outputErr.Error(),
				Suggestion: "Increase max_output_bytes or reduce command output",
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	exitCode := 0
	if !timedOut && waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return &shuttle.Result{
				Success:         false,
				Error:           &shuttle.Error{Code: "EXECUTION_FAILED", Message: fmt.Sprintf("Command execution error: %v", waitErr)},
				ExecutionTimeMs: time.Since(start).Milliseconds(),
			}, nil
		}
	}

	if timedOut {
		return &shuttle.Result{
			Success: false,
			Error: &shuttle.Error{
				Code:       "TIMEOUT",
				Message:    fmt.Sprintf("Command execution timeout after %d seconds", timeoutSeconds),
				Suggestion: "Increase timeout_seconds or optimize the command",
			},
			Data: map[string]interface{}{
				"stdout":      strings.Join(stdoutLines, "\n"),
				"stderr":      strings.Join(stderrLines, "\n"),
				"exit_code":   -1,
				"shell":       actualShellType,
				"working_dir": cwd,
				"timed_out":   true,
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	stdout := strings.Join(stdoutLines, "\n")
	stderr := strings.Join(stderrLines, "\n")
	success := exitCode == 0

	result := &shuttle.Result{
		Success: success,
		Data: map[string]interface{}{
			"stdout":      stdout,
			"stderr":      stderr,
			"exit_code":   exitCode,
			"shell":       actualShellType,
			"working_dir": cwd,
			"timed_out":   false,
		},
		Metadata: map[string]interface{}{
			"command":      sanitizeCommandForTracing(command),
			"shell_type":   actualShellType,
			"shell_os":     runtime.GOOS,
			"output_bytes": outputBytes,
			"exit_code":    exitCode,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}

	if !success {
		result.Error = &shuttle.Error{
			Code:       "EXIT_ERROR",
			Message:    fmt.Sprintf("Command exited with code %d", exitCode),
			Suggestion: "Check stderr output for details",
			Retryable:  true,
		}
	}

	return result, nil
}

func (t *ShellExecuteTool) Backend() string {
	return "" // Backend-agnostic
}

// detectShell determines which shell to use based on OS and user preference.
func detectShell(shellType, command string) (binary string, args []string, actualType string, err error) {
	switch shellType {
	case "bash":
		binary, err = exec.LookPath("bash")
		if err != nil {
			return "", nil, "", fmt.Errorf("bash not found")
		}
		return binary, []string{"-c", command}, "bash", nil

	case "sh":
		binary, err = exec.LookPath("sh")
		if err != nil {
			return "", nil, "", fmt.Errorf("sh not found")
		}
		return binary, []string{"-c", command}, "sh", nil

	case "powershell":
		binary, err = exec.LookPath("powershell.exe")
		if err != nil {
			binary, err = exec.LookPath("powershell")
		}
		if err != nil {
			return "", nil, "", fmt.Errorf("powershell not found")
		}
		return binary, []string{"-NoProfile", "-NonInteractive", "-Command", command}, "powershell", nil

	case "cmd":
		binary, err = exec.LookPath("cmd.exe")
		if err != nil {
			binary, err = exec.LookPath("cmd")
		}
		if err != nil {
			return "", nil, "", fmt.Errorf("cmd not found")
		}
		return binary, []string{"/C", command}, "cmd", nil

	case "default":
		switch runtime.GOOS {
		case "windows":
			if binary, err = exec.LookPath("powershell.exe"); err == nil {
				return binary, []string{"-NoProfile", "-NonInteractive", "-Command", command}, "powershell", nil
			}
			if binary, err = exec.LookPath("powershell"); err == nil {
				return binary, []string{"-NoProfile", "-NonInteractive", "-Command", command}, "powershell", nil
			}
			if binary, err = exec.LookPath("cmd.exe"); err == nil {
				return binary, []string{"/C", command}, "cmd", nil
			}
			if binary, err = exec.LookPath("cmd"); err == nil {
				return binary, []string{"/C", command}, "cmd", nil
			}
			return "", nil, "", fmt.Errorf("no shell found (tried powershell, cmd)")

		default:
			if binary, err = exec.LookPath("bash"); err == nil {
				return binary, []string{"-c", command}, "bash", nil
			}
			if binary, err = exec.LookPath("sh"); err == nil {
				return binary, []string{"-c", command}, "sh", nil
			}
			return "", nil, "", fmt.Errorf("no shell found (tried bash, sh)")
		}

	default:
		return "", nil, "", fmt.Errorf("unknown shell type: %s", shellType)
	}
}

// isBlockedWorkingDir checks if a working directory is in a sensitive system location.
func isBlockedWorkingDir(path string) bool {
	blockedDirs := []string{
		"/etc",
		"/bin",
		"/sbin",
		"/boot",
		"/sys",
		"/proc",
		"/private/etc",
		"/System",
		"/Library",
		`C:\Windows\System32`,
		`C:\Windows\SysWOW64`,
		`C:\Windows\WinSxS`,
	}

	cleanPath := filepath.Clean(path)
	for _, blocked := range blockedDirs {
		if cleanPath == blocked || strings.HasPrefix(cleanPath, blocked+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// sanitizeCommandForTracing redacts sensitive information from commands before they're logged.
func sanitizeCommandForTracing(command string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(api[_-]?key)[=\s:]+[^\s'";]+`),
		regexp.MustCompile(`(?i)(password)[=\s:]+[^\s'";]+`),
		regexp.MustCompile(`(?i)(token)[=\s:]+[^\s'";]+`),
		regexp.MustCompile(`(?i)(secret)[=\s:]+[^\s'";]+`),
		regexp.MustCompile(`(?i)(key)[=\s:]+[^\s'";]+`),
	}

	sanitized := command
	for _, pattern := range patterns {
		sanitized = pattern.ReplaceAllString(sanitized, "***")
	}

	if len(sanitized) > 200 {
		return sanitized[:197] + "..."
	}
	return sanitized
}

// checkCommandTokenSize validates that a command isn't too large to execute safely.
// Large commands (especially heredocs) can cause output token exhaustion mid-generation.
func checkCommandTokenSize(command string) error {
	const (
		maxCommandTokens = 10000
		charsPerToken    = 4
		maxCommandChars  = maxCommandTokens * charsPerToken
	)

	commandLength := len(command)
	estimatedTokens := commandLength / charsPerToken

	if commandLength > maxCommandChars {
		return fmt.Errorf(
			"command is too large: %d characters (~%d tokens); maximum %d characters (~%d tokens); "+
				"break large file writes into smaller sections instead of one large heredoc",
			commandLength, estimatedTokens, maxCommandChars, maxCommandTokens,
		)
	}

	return nil
}

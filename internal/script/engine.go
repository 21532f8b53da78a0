package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Engine evaluates scripts. It is safe for concurrent use; every call gets
// its own VM.
type Engine struct {
	config Config
	log    *logging.Logger
}

// New creates an engine
func New(config Config, log *logging.Logger) *Engine {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxCallStack <= 0 {
		config.MaxCallStack = DefaultConfig().MaxCallStack
	}
	return &Engine{config: config, log: logging.OrNop(log).Component("script")}
}

// Evaluate runs source in the context of page, which may be nil for an
// empty window. sourceURL names the script in stack traces.
func (e *Engine) Evaluate(ctx context.Context, page window.Page, sourceURL, source string) (Result, error) {
	start := time.Now()
	vm := goja.New()
	vm.SetMaxCallStackSize(e.config.MaxCallStack)

	var (
		consoleMu sync.Mutex
		console   []LogEntry
	)
	record := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			entry := LogEntry{Level: level, Message: strings.Join(parts, " "), Time: time.Now()}
			consoleMu.Lock()
			console = append(console, entry)
			consoleMu.Unlock()
			e.log.Info("script console", zap.String("level", level), zap.String("message", entry.Message))
			return goja.Undefined()
		}
	}

	if err := e.setupGlobals(vm, page, record); err != nil {
		return Result{}, fmt.Errorf("set up script globals: %w", err)
	}

	prog, err := goja.Compile(sourceURL, source, false)
	if err != nil {
		return Result{}, fmt.Errorf("compile script: %w", err)
	}

	stop := make(chan struct{})
	timer := time.NewTimer(e.config.Timeout)
	defer timer.Stop()
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	val, err := vm.RunProgram(prog)
	close(stop)

	res := Result{Duration: time.Since(start)}
	consoleMu.Lock()
	res.Console = append([]LogEntry(nil), console...)
	consoleMu.Unlock()
	if err != nil {
		return res, fmt.Errorf("evaluate %s: %w", sourceURL, err)
	}

	if val == nil || goja.IsUndefined(val) {
		res.Undefined = true
		return res, nil
	}
	res.Text = val.String()
	if !goja.IsNull(val) {
		res.Value = val.Export()
	}
	return res, nil
}

type consoleFunc func(level string) func(goja.FunctionCall) goja.Value

func (e *Engine) setupGlobals(vm *goja.Runtime, page window.Page, record consoleFunc) error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	inert := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := vm.Set(name, inert); err != nil {
			return err
		}
	}

	if e.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error", "debug"} {
			if err := console.Set(level, record(level)); err != nil {
				return err
			}
		}
		if err := vm.Set("console", console); err != nil {
			return err
		}
	}

	href, title := "about:blank", ""
	if page != nil {
		href = page.URL().String()
		if titled, ok := page.(interface{ Title() string }); ok {
			title = titled.Title()
		}
	}

	location := vm.NewObject()
	if u := pageURLParts(page); u != nil {
		for k, v := range u {
			if err := location.Set(k, v); err != nil {
				return err
			}
		}
	}
	if err := location.Set("href", href); err != nil {
		return err
	}
	if err := location.Set("toString", func() string { return href }); err != nil {
		return err
	}

	document := vm.NewObject()
	for k, v := range map[string]any{"title": title, "URL": href, "location": location} {
		if err := document.Set(k, v); err != nil {
			return err
		}
	}

	global := vm.GlobalObject()
	for k, v := range map[string]any{"window": global, "self": global, "document": document, "location": location} {
		if err := vm.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func pageURLParts(page window.Page) map[string]string {
	if page == nil {
		return nil
	}
	u := page.URL()
	parts := map[string]string{
		"protocol": u.Scheme + ":",
		"host":     u.Host,
		"hostname": u.Hostname(),
		"port":     u.Port(),
		"pathname": u.EscapedPath(),
		"search":   "",
		"hash":     "",
	}
	if u.RawQuery != "" {
		parts["search"] = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		parts["hash"] = "#" + u.EscapedFragment()
	}
	return parts
}

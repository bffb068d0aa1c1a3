// Command libwumpus builds Hunt the Wumpus as a C shared library.
//
//	go build -buildmode=c-shared -o libwumpus.so ./cmd/libwumpus
//
// The host creates an engine with new_engine and passes the returned handle
// to every other call. Strings returned by initial_html, last_string,
// last_response_json and last_error belong to the library and stay valid
// until the next of those calls on the same handle, or until delete_engine.
// The host must never free them.
//
// execute and handle_event return 0 on success and a non-zero status
// otherwise; last_error describes the failure.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/boundary"
	"github.com/wricardo/wumpus/game/handle"
	"github.com/wricardo/wumpus/game/wumpus"
)

var (
	engines     *boundary.Boundary[wumpus.Config, wumpus.Action, wumpus.Response]
	enginesOnce sync.Once
)

// lib builds the process-wide boundary on first use
func lib() *boundary.Boundary[wumpus.Config, wumpus.Action, wumpus.Response] {
	enginesOnce.Do(func() {
		log := boundary.Logger()
		engines = boundary.New[wumpus.Config, wumpus.Action, wumpus.Response](
			wumpus.Factory{Logger: log},
			interfaceTypeFromEnv(log),
			boundary.WithLogger(log),
			boundary.WithAllocator(cAllocator{}),
		)
	})
	return engines
}

// guard keeps a panic from unwinding into C. It must be deferred directly.
func guard(fn string, onPanic func()) {
	if r := recover(); r != nil {
		boundary.Logger().Error("recovered panic at C boundary",
			zap.String("fn", fn),
			zap.Any("panic", r),
			zap.Stack("stack"))
		if onPanic != nil {
			onPanic()
		}
	}
}

func inbound(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return []byte(C.GoString(s))
}

//export new_engine
func new_engine(config *C.char) (h C.uintptr_t) {
	defer guard("new_engine", func() { h = 0 })

	created, err := lib().Create(inbound(config))
	if err != nil {
		boundary.Logger().Fatal("failed to create engine", zap.Error(err))
	}
	return C.uintptr_t(created)
}

//export delete_engine
func delete_engine(h C.uintptr_t) {
	defer guard("delete_engine", nil)

	_ = lib().Destroy(handle.Handle(h))
}

//export execute
func execute(h C.uintptr_t, action *C.char) (status C.int32_t) {
	defer guard("execute", func() { status = C.int32_t(boundary.StatusPanic) })

	err := lib().Execute(handle.Handle(h), inbound(action))
	return C.int32_t(boundary.StatusOf(err))
}

//export handle_event
func handle_event(h C.uintptr_t, event *C.char) (status C.int32_t) {
	defer guard("handle_event", func() { status = C.int32_t(boundary.StatusPanic) })

	err := lib().HandleEvent(handle.Handle(h), inbound(event))
	return C.int32_t(boundary.StatusOf(err))
}

//export initial_html
func initial_html(h C.uintptr_t) (s *C.char) {
	defer guard("initial_html", func() { s = nil })

	p, _ := lib().InitialHTML(handle.Handle(h))
	return (*C.char)(p)
}

//export last_string
func last_string(h C.uintptr_t) (s *C.char) {
	defer guard("last_string", func() { s = nil })

	p, _ := lib().LastString(handle.Handle(h))
	return (*C.char)(p)
}

//export last_response_json
func last_response_json(h C.uintptr_t) (s *C.char) {
	defer guard("last_response_json", func() { s = nil })

	p, _ := lib().LastResponseJSON(handle.Handle(h))
	return (*C.char)(p)
}

//export is_shutdown_required
func is_shutdown_required(h C.uintptr_t) (required C.bool) {
	defer guard("is_shutdown_required", func() { required = false })

	ok, _ := lib().IsShutdownRequired(handle.Handle(h))
	return C.bool(ok)
}

//export last_error
func last_error(h C.uintptr_t) (s *C.char) {
	defer guard("last_error", func() { s = nil })

	p, _ := lib().LastError(handle.Handle(h))
	return (*C.char)(p)
}

func main() {}

// Package luahost runs Lua scripts that listen to okan extension events.
package luahost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/event"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const listenerName = "lua"

// Host of Lua extensions.
type Host struct {
	Functions []string // Event functions registered by the script.
	extHost   *extension.Host
	pool      *statePool
	logger    zerolog.Logger
}

// New constructs a Lua Host from the configured script.  Returns nil without error when the script
// does not exist.
func New(logger zerolog.Logger, conf config.Lua, extHost *extension.Host) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	slog := logger.With().Str("module", "lua").Str("phase", "startup").Str("path", scriptPath).
		Logger()

	if fi, err := os.Stat(scriptPath); err != nil {
		slog.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("lua script %v is a directory", scriptPath)
	}

	slog.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(logger, extHost, bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a Lua Host, loading Lua source from the provided reader.  The path is
// used in logging and error messages.
func NewFromReader(
	logger zerolog.Logger,
	extHost *extension.Host,
	r io.Reader,
	path string,
) (*Host, error) {
	logger = logger.With().Str("module", "lua").Str("path", path).Logger()

	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	pool := newStatePool(logger, proto)
	h := &Host{extHost: extHost, pool: pool, logger: logger}
	ls, err := pool.getState()
	if err != nil {
		return nil, err
	}
	defer pool.putState(ls)

	if err := h.wireFunctions(ls); err != nil {
		return nil, err
	}

	return h, nil
}

// CreateChannel creates a channel and places it into the named global variable in newly created
// LStates.
func (h *Host) CreateChannel(name string) chan lua.LValue {
	return h.pool.createChannel(name)
}

// wireFunctions registers an event listener for each okan event function the script defined.
func (h *Host) wireFunctions(ls *lua.LState) error {
	o, err := getOkan(ls)
	if err != nil {
		return err
	}

	events := h.extHost.Events
	if o.Before.SendVerdict != nil {
		h.Functions = append(h.Functions, "before.send_verdict")
		events.BeforeSendVerdict.AddListener(listenerName, h.handleBeforeSendVerdict)
	}
	if o.After.CheckListGenerated != nil {
		h.Functions = append(h.Functions, "after.checklist_generated")
		events.AfterCheckListGenerated.AddListener(listenerName, h.handleAfterCheckListGenerated)
	}
	if o.After.RecordStored != nil {
		h.Functions = append(h.Functions, "after.record_stored")
		events.AfterRecordStored.AddListener(listenerName, h.handleAfterRecordStored)
	}
	if o.After.RecordDeleted != nil {
		h.Functions = append(h.Functions, "after.record_deleted")
		events.AfterRecordDeleted.AddListener(listenerName, h.handleAfterRecordDeleted)
	}

	h.logger.Debug().Strs("functions", h.Functions).Msg("Wired Lua event functions")
	return nil
}

func (h *Host) handleBeforeSendVerdict(msg event.OutgoingMessage) *event.Verdict {
	var v *event.Verdict
	h.call("before.send_verdict", func(o *Okan) *lua.LFunction { return o.Before.SendVerdict },
		func(ls *lua.LState) lua.LValue { return wrapOutgoingMessage(ls, &msg) },
		func(logger zerolog.Logger, lv lua.LValue) {
			if lv == lua.LNil {
				return
			}
			var err error
			if v, err = unwrapVerdict(lv); err != nil {
				logger.Error().Err(err).Msg("Bad return value from Lua function")
			}
		})
	return v
}

func (h *Host) handleAfterCheckListGenerated(res event.CheckResult) {
	h.call("after.checklist_generated",
		func(o *Okan) *lua.LFunction { return o.After.CheckListGenerated },
		func(ls *lua.LState) lua.LValue { return wrapUserData(ls, checkResultName, &res) }, nil)
}

func (h *Host) handleAfterRecordStored(meta event.RecordMetadata) {
	h.call("after.record_stored", func(o *Okan) *lua.LFunction { return o.After.RecordStored },
		func(ls *lua.LState) lua.LValue { return wrapUserData(ls, recordMetadataName, &meta) }, nil)
}

func (h *Host) handleAfterRecordDeleted(meta event.RecordMetadata) {
	h.call("after.record_deleted", func(o *Okan) *lua.LFunction { return o.After.RecordDeleted },
		func(ls *lua.LState) lua.LValue { return wrapUserData(ls, recordMetadataName, &meta) }, nil)
}

// call checks out an LState, invokes the event function selected by fn with the argument built by
// arg, and passes its single return value to result when result is non-nil.
func (h *Host) call(
	name string,
	fn func(*Okan) *lua.LFunction,
	arg func(*lua.LState) lua.LValue,
	result func(zerolog.Logger, lua.LValue),
) {
	logger := h.logger.With().Str("event", name).Logger()
	logger.Debug().Msg("Calling Lua function")

	ls, err := h.pool.getState()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get Lua state")
		return
	}
	defer h.pool.putState(ls)

	o, err := getOkan(ls)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get okan global")
		return
	}
	f := fn(o)
	if f == nil {
		logger.Warn().Msg("Lua function no longer defined")
		return
	}

	nret := 0
	if result != nil {
		nret = 1
	}
	if err := ls.CallByParam(lua.P{Fn: f, NRet: nret, Protect: true}, arg(ls)); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
		return
	}
	if result != nil {
		lv := ls.Get(-1)
		ls.Pop(1)
		result(logger, lv)
	}
}

package luahost

import (
	"net/http"
	"sync"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/cosmotek/loguago"
	json "github.com/inbucket/gopher-json"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// maxIdleStates caps the LStates kept for reuse; extras are closed on return.
const maxIdleStates = 8

type statePool struct {
	sync.Mutex
	proto    *lua.FunctionProto         // Compiled script.
	idle     []*lua.LState              // LStates ready for reuse.
	channels map[string]chan lua.LValue // Global interop channels.
	logger   zerolog.Logger             // Logger exported to scripts.
	client   *http.Client               // Client behind the http module.
}

func newStatePool(logger zerolog.Logger, proto *lua.FunctionProto) *statePool {
	return &statePool{
		proto:    proto,
		channels: make(map[string]chan lua.LValue),
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// newState creates an LState, registers okan types and runs the script. Lock must be held.
func (lp *statePool) newState() (*lua.LState, error) {
	ls := lua.NewState()

	ls.PreloadModule("http", gluahttp.NewHttpModule(lp.client).Loader)
	ls.PreloadModule("json", json.Loader)
	ls.PreloadModule("logger", loguago.NewLogger(lp.logger).Loader)

	for name, ch := range lp.channels {
		ls.SetGlobal(name, lua.LChannel(ch))
	}

	registerAddressModule(ls)
	registerOkanTypes(ls)
	registerOutgoingMessageType(ls)
	registerVerdictType(ls)
	registerCheckResultType(ls)
	registerRecordMetadataType(ls)

	ls.Push(ls.NewFunctionFromProto(lp.proto))
	if err := ls.PCall(0, lua.MultRet, nil); err != nil {
		ls.Close()
		return nil, err
	}

	return ls, nil
}

// getState returns an idle LState, or creates a new one.
func (lp *statePool) getState() (*lua.LState, error) {
	lp.Lock()
	defer lp.Unlock()

	n := len(lp.idle)
	if n == 0 {
		return lp.newState()
	}

	ls := lp.idle[n-1]
	lp.idle = lp.idle[:n-1]

	return ls, nil
}

// putState returns the LState to the pool with an empty stack.
func (lp *statePool) putState(ls *lua.LState) {
	if ls.IsClosed() {
		return
	}

	ls.Pop(ls.GetTop())

	lp.Lock()
	defer lp.Unlock()

	if len(lp.idle) >= maxIdleStates {
		ls.Close()
		return
	}
	lp.idle = append(lp.idle, ls)
}

// createChannel creates a channel that becomes a global variable in newly created LStates.  Idle
// states are closed so the next caller sees the channel; states already checked out will not.
func (lp *statePool) createChannel(name string) chan lua.LValue {
	lp.Lock()
	defer lp.Unlock()

	ch := make(chan lua.LValue, 10)
	lp.channels[name] = ch

	for _, ls := range lp.idle {
		ls.Close()
	}
	lp.idle = lp.idle[:0]

	return ch
}

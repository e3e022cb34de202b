package luahost

import (
	"github.com/okanmail/okan/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const outgoingMessageName = "outgoing_message"

func registerOutgoingMessageType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(outgoingMessageName)
	ls.SetField(mt, "__index", ls.NewFunction(outgoingMessageIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(readOnlyNewIndex(outgoingMessageName)))
}

func wrapOutgoingMessage(ls *lua.LState, val *event.OutgoingMessage) *lua.LUserData {
	return wrapUserData(ls, outgoingMessageName, val)
}

// Gets a field value from the OutgoingMessage user object.  This emulates a Lua table, allowing
// `msg.subject` instead of `msg:subject()`.
func outgoingMessageIndex(ls *lua.LState) int {
	m := checkUserData[event.OutgoingMessage](ls, 1, outgoingMessageName)
	field := ls.CheckString(2)

	switch field {
	case "sender":
		ls.Push(lua.LString(m.Sender))
	case "sender_domain":
		ls.Push(lua.LString(m.SenderDomain))
	case "subject":
		ls.Push(lua.LString(m.Subject))
	case "body":
		ls.Push(lua.LString(m.Body))
	case "to":
		ls.Push(stringTable(m.To))
	case "cc":
		ls.Push(stringTable(m.Cc))
	case "bcc":
		ls.Push(stringTable(m.Bcc))
	case "attachments":
		ls.Push(stringTable(m.Attachments))
	case "alerts":
		ls.Push(stringTable(m.Alerts))
	case "cannot_send":
		ls.Push(lua.LBool(m.CannotSend))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func readOnlyNewIndex(typeName string) lua.LGFunction {
	return func(ls *lua.LState) int {
		ls.RaiseError("%s is read-only", typeName)
		return 0
	}
}

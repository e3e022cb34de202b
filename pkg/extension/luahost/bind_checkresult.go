package luahost

import (
	"github.com/okanmail/okan/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const (
	checkResultName    = "check_result"
	recordMetadataName = "record_metadata"
)

func registerCheckResultType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(checkResultName)
	ls.SetField(mt, "__index", ls.NewFunction(checkResultIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(readOnlyNewIndex(checkResultName)))
}

func registerRecordMetadataType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(recordMetadataName)
	ls.SetField(mt, "__index", ls.NewFunction(recordMetadataIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(readOnlyNewIndex(recordMetadataName)))
}

func checkResultIndex(ls *lua.LState) int {
	r := checkUserData[event.CheckResult](ls, 1, checkResultName)
	field := ls.CheckString(2)

	switch field {
	case "id":
		ls.Push(lua.LString(r.RecordID))
	case "date":
		ls.Push(lua.LNumber(r.Date.Unix()))
	case "sender":
		ls.Push(lua.LString(r.Sender))
	case "subject":
		ls.Push(lua.LString(r.Subject))
	case "to":
		ls.Push(stringTable(r.To))
	case "cc":
		ls.Push(stringTable(r.Cc))
	case "bcc":
		ls.Push(stringTable(r.Bcc))
	case "alerts":
		ls.Push(stringTable(r.Alerts))
	case "cannot_send":
		ls.Push(lua.LBool(r.CannotSend))
	case "reason":
		ls.Push(lua.LString(r.Reason))
	case "needs_confirmation":
		ls.Push(lua.LBool(r.NeedsConfirmation))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func recordMetadataIndex(ls *lua.LState) int {
	m := checkUserData[event.RecordMetadata](ls, 1, recordMetadataName)
	field := ls.CheckString(2)

	switch field {
	case "id":
		ls.Push(lua.LString(m.ID))
	case "date":
		ls.Push(lua.LNumber(m.Date.Unix()))
	case "sender":
		ls.Push(lua.LString(m.Sender))
	case "subject":
		ls.Push(lua.LString(m.Subject))
	case "alert_count":
		ls.Push(lua.LNumber(m.AlertCount))
	case "cannot_send":
		ls.Push(lua.LBool(m.CannotSend))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

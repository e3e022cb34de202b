package luahost

import (
	"fmt"

	"github.com/okanmail/okan/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const verdictName = "verdict"

func registerVerdictType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(verdictName)
	ls.SetGlobal(verdictName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(newVerdict))
	ls.SetField(mt, "alert", ls.NewFunction(newAlertVerdict))
	ls.SetField(mt, "block", ls.NewFunction(newBlockVerdict))

	ls.SetField(mt, "__index", ls.NewFunction(verdictIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(verdictNewIndex))
}

// verdict.new()
func newVerdict(ls *lua.LState) int {
	ls.Push(wrapUserData(ls, verdictName, &event.Verdict{}))
	return 1
}

// verdict.alert(message, ...) raises each message as an alert.
func newAlertVerdict(ls *lua.LState) int {
	val := &event.Verdict{}
	for i := 1; i <= ls.GetTop(); i++ {
		val.Alerts = append(val.Alerts, ls.CheckString(i))
	}
	ls.Push(wrapUserData(ls, verdictName, val))
	return 1
}

// verdict.block([reason]) blocks sending.
func newBlockVerdict(ls *lua.LState) int {
	val := &event.Verdict{Block: true, Reason: ls.OptString(1, "")}
	ls.Push(wrapUserData(ls, verdictName, val))
	return 1
}

func unwrapVerdict(lv lua.LValue) (*event.Verdict, error) {
	if ud, ok := lv.(*lua.LUserData); ok {
		if v, ok := ud.Value.(*event.Verdict); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("expected verdict, got %q", lv.Type().String())
}

func verdictIndex(ls *lua.LState) int {
	v := checkUserData[event.Verdict](ls, 1, verdictName)
	field := ls.CheckString(2)

	switch field {
	case "alerts":
		ls.Push(stringTable(v.Alerts))
	case "block":
		ls.Push(lua.LBool(v.Block))
	case "reason":
		ls.Push(lua.LString(v.Reason))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func verdictNewIndex(ls *lua.LState) int {
	v := checkUserData[event.Verdict](ls, 1, verdictName)
	index := ls.CheckString(2)

	switch index {
	case "alerts":
		v.Alerts = tableStrings(ls.CheckTable(3))
	case "block":
		v.Block = ls.CheckBool(3)
	case "reason":
		v.Reason = ls.CheckString(3)
	default:
		ls.RaiseError("invalid index %q", index)
	}

	return 0
}

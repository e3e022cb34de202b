package luahost

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

const (
	okanName       = "okan"
	okanBeforeName = "okan_before"
	okanAfterName  = "okan_after"
)

// Okan is the value behind the okan global; scripts register event functions on it.
type Okan struct {
	After  OkanAfterFuncs
	Before OkanBeforeFuncs
}

// OkanAfterFuncs holds the okan.after event functions.
type OkanAfterFuncs struct {
	CheckListGenerated *lua.LFunction
	RecordDeleted      *lua.LFunction
	RecordStored       *lua.LFunction
}

// OkanBeforeFuncs holds the okan.before event functions.
type OkanBeforeFuncs struct {
	SendVerdict *lua.LFunction
}

func registerOkanTypes(ls *lua.LState) {
	mt := ls.NewTypeMetatable(okanName)
	ls.SetField(mt, "__index", ls.NewFunction(okanIndex))

	mt = ls.NewTypeMetatable(okanAfterName)
	ls.SetField(mt, "__index", ls.NewFunction(okanAfterIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(okanAfterNewIndex))

	mt = ls.NewTypeMetatable(okanBeforeName)
	ls.SetField(mt, "__index", ls.NewFunction(okanBeforeIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(okanBeforeNewIndex))

	ls.SetGlobal(okanName, wrapUserData(ls, okanName, &Okan{}))
}

func wrapUserData(ls *lua.LState, typeName string, val any) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(typeName))

	return ud
}

// getOkan returns the okan global of ls.
func getOkan(ls *lua.LState) (*Okan, error) {
	lv := ls.GetGlobal(okanName)
	if lv == nil {
		return nil, errors.New("okan object was nil")
	}

	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("okan object was type %s instead of UserData", lv.Type())
	}

	val, ok := ud.Value.(*Okan)
	if !ok {
		return nil, fmt.Errorf("okan object (%v) could not be cast", ud.Value)
	}

	return val, nil
}

// checkUserData returns the pos argument as T, else raises a Lua argument error.
func checkUserData[T any](ls *lua.LState, pos int, typeName string) *T {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*T); ok {
		return v
	}
	ls.ArgError(pos, typeName+" expected")
	return nil
}

func okanIndex(ls *lua.LState) int {
	o := checkUserData[Okan](ls, 1, okanName)
	field := ls.CheckString(2)

	switch field {
	case "after":
		ls.Push(wrapUserData(ls, okanAfterName, &o.After))
	case "before":
		ls.Push(wrapUserData(ls, okanBeforeName, &o.Before))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func okanAfterIndex(ls *lua.LState) int {
	after := checkUserData[OkanAfterFuncs](ls, 1, okanAfterName)
	field := ls.CheckString(2)

	switch field {
	case "checklist_generated":
		ls.Push(funcOrNil(after.CheckListGenerated))
	case "record_deleted":
		ls.Push(funcOrNil(after.RecordDeleted))
	case "record_stored":
		ls.Push(funcOrNil(after.RecordStored))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func okanAfterNewIndex(ls *lua.LState) int {
	after := checkUserData[OkanAfterFuncs](ls, 1, okanAfterName)
	index := ls.CheckString(2)

	switch index {
	case "checklist_generated":
		after.CheckListGenerated = ls.CheckFunction(3)
	case "record_deleted":
		after.RecordDeleted = ls.CheckFunction(3)
	case "record_stored":
		after.RecordStored = ls.CheckFunction(3)
	default:
		ls.RaiseError("invalid okan.after index %q", index)
	}

	return 0
}

func okanBeforeIndex(ls *lua.LState) int {
	before := checkUserData[OkanBeforeFuncs](ls, 1, okanBeforeName)
	field := ls.CheckString(2)

	switch field {
	case "send_verdict":
		ls.Push(funcOrNil(before.SendVerdict))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func okanBeforeNewIndex(ls *lua.LState) int {
	before := checkUserData[OkanBeforeFuncs](ls, 1, okanBeforeName)
	index := ls.CheckString(2)

	switch index {
	case "send_verdict":
		before.SendVerdict = ls.CheckFunction(3)
	default:
		ls.RaiseError("invalid okan.before index %q", index)
	}

	return 0
}

func funcOrNil(f *lua.LFunction) lua.LValue {
	if f == nil {
		return lua.LNil
	}

	return f
}

// stringTable converts a string slice into a Lua list.
func stringTable(values []string) *lua.LTable {
	lt := &lua.LTable{}
	for _, v := range values {
		lt.Append(lua.LString(v))
	}
	return lt
}

// tableStrings collects the string values of a Lua list.
func tableStrings(lt *lua.LTable) []string {
	values := make([]string, 0, lt.Len())
	lt.ForEach(func(_, lv lua.LValue) {
		if s, ok := lv.(lua.LString); ok {
			values = append(values, string(s))
		}
	})
	return values
}

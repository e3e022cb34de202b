package luahost

import (
	"github.com/okanmail/okan/pkg/policy"
	lua "github.com/yuin/gopher-lua"
)

const addressName = "address"

// registerAddressModule exposes the address helpers okan uses to classify recipients, so scripts
// agree with the built-in checks.
func registerAddressModule(ls *lua.LState) {
	mod := ls.SetFuncs(ls.NewTable(), addressFuncs)
	ls.SetField(mod, "no_domain", lua.LString(policy.NoDomain))
	ls.SetGlobal(addressName, mod)
}

var addressFuncs = map[string]lua.LGFunction{
	"domain":      addressDomain,
	"is_internal": addressIsInternal,
	"parse":       addressParse,
}

// address.domain(addr) returns the domain including '@', or "".
func addressDomain(ls *lua.LState) int {
	ls.Push(lua.LString(policy.DomainOf(ls.CheckString(1))))
	return 1
}

// address.is_internal(addr, sender_domain)
func addressIsInternal(ls *lua.LState) int {
	ls.Push(lua.LBool(policy.IsInternal(ls.CheckString(1), ls.CheckString(2))))
	return 1
}

// address.parse(addr) returns local, domain or nil, error message.
func addressParse(ls *lua.LState) int {
	local, domain, err := policy.ParseEmailAddress(ls.CheckString(1))
	if err != nil {
		ls.Push(lua.LNil)
		ls.Push(lua.LString(err.Error()))
		return 2
	}
	ls.Push(lua.LString(local))
	ls.Push(lua.LString(domain))
	return 2
}

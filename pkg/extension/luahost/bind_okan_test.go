package luahost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestOkanEventFuncs(t *testing.T) {
	script := `
		assert(okan, "okan should not be nil")
		assert(okan.after, "okan.after should not be nil")
		assert(okan.before, "okan.before should not be nil")

		local groups = {
			after = { "checklist_generated", "record_deleted", "record_stored" },
			before = { "send_verdict" },
		}

		local calls = {}
		local testfn = function(name)
			calls[name] = true
		end

		for group, fns in pairs(groups) do
			for i, name in ipairs(fns) do
				assert(okan[group][name] == nil, group .. "." .. name .. " should start nil")
				okan[group][name] = testfn
				okan[group][name](group .. "." .. name)
			end
		end

		for group, fns in pairs(groups) do
			for i, name in ipairs(fns) do
				assert(calls[group .. "." .. name], group .. "." .. name .. " should have been called")
			end
		end
	`

	ls := lua.NewState()
	registerOkanTypes(ls)
	require.NoError(t, ls.DoString(script))

	o, err := getOkan(ls)
	require.NoError(t, err)
	assert.NotNil(t, o.Before.SendVerdict)
	assert.NotNil(t, o.After.CheckListGenerated)
}

func TestOkanInvalidIndex(t *testing.T) {
	ls := lua.NewState()
	registerOkanTypes(ls)
	assert.Error(t, ls.DoString(`okan.after.message_stored = function() end`))
	assert.Error(t, ls.DoString(`okan.before.anything = function() end`))
}

func TestTableStrings(t *testing.T) {
	lt := stringTable([]string{"a", "b"})
	lt.Append(lua.LNumber(3))
	assert.Equal(t, []string{"a", "b"}, tableStrings(lt))
}

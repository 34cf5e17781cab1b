package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten_PreOrder(t *testing.T) {
	tree := []Item{
		{ProgramNo: "A", Children: []Item{
			{ProgramNo: "A1", Children: []Item{{ProgramNo: "A1a"}}},
			{ProgramNo: "A2"},
		}},
		{ProgramNo: "B"},
	}
	var got []string
	for _, it := range Flatten(tree) {
		got = append(got, it.ProgramNo)
	}
	assert.Equal(t, []string{"A", "A1", "A1a", "A2", "B"}, got)
}

func TestFind(t *testing.T) {
	tree := sampleTree()
	it, ok := Find(tree, "FCM010")
	assert.True(t, ok)
	assert.Equal(t, "GL Slip", it.ProgramName)

	_, ok = Find(tree, "")
	assert.False(t, ok)
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"/src/pages/fcm/gl/slip/index.tsx", "/app/fcm/gl/slip"},
		{"src/pages/fcm/gl/slip/index.tsx", "/app/fcm/gl/slip"},
		{"/pages/ap/invoice/List.jsx", "/app/ap/invoice"},
		{"/src/pages/Home.tsx", "/app"},
		{"fcm/gl", "/app/fcm/gl"},
		{"/fcm//gl/", "/app/fcm/gl"},
		{"/app/fcm/gl", "/app/fcm/gl"},
		{"//app//fcm", "/app/fcm"},
		{"/src/fcm/gl", "/app/fcm/gl"},
		{"/srcx/fcm", "/app/srcx/fcm"},
		{"/lib/util.ts", "/app/lib/util.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultResolver.NormalizeRoute(tt.in))
		})
	}
}

func TestNormalizeRoute_NoDevPrefix(t *testing.T) {
	r := Resolver{}
	assert.Equal(t, "/app/src/fcm", r.NormalizeRoute("/src/fcm"))
}

func TestResolveProgramNo_LongestPrefixWins(t *testing.T) {
	tree := []Item{
		{ProgramNo: "GL", Path: "/app/fcm/gl", Children: []Item{
			{ProgramNo: "SLIP", Path: "/app/fcm/gl/slip"},
		}},
	}
	got, ok := ResolveProgramNo("/app/fcm/gl/slip/post", tree)
	assert.True(t, ok)
	assert.Equal(t, "SLIP", got)

	got, ok = ResolveProgramNo("/app/fcm/gl/journal", tree)
	assert.True(t, ok)
	assert.Equal(t, "GL", got)
}

func TestResolveProgramNo_ExactMatch(t *testing.T) {
	tree := []Item{
		{ProgramNo: "AP010", Path: "/src/pages/ap/invoice/index.tsx"},
		{ProgramNo: "AR010", Path: "/src/pages/ar/receipt/index.tsx"},
	}
	got, ok := ResolveProgramNo("/app/ar/receipt", tree)
	assert.True(t, ok)
	assert.Equal(t, "AR010", got)
}

func TestResolveProgramNo_FirstInPreOrderWinsTies(t *testing.T) {
	tree := []Item{
		{ProgramNo: "PARENT", Children: []Item{
			{ProgramNo: "FIRST", Path: "/app/mdm/account"},
		}},
		{ProgramNo: "SECOND", Path: "/app/mdm/account"},
	}
	got, ok := ResolveProgramNo("/app/mdm/account", tree)
	assert.True(t, ok)
	assert.Equal(t, "FIRST", got)
}

func TestResolveProgramNo_DeeperMenuUnderPrefix(t *testing.T) {
	tree := []Item{{ProgramNo: "SYS010", Path: "/app/sys/user/list"}}
	got, ok := ResolveProgramNo("/app/sys/user", tree)
	assert.True(t, ok)
	assert.Equal(t, "SYS010", got)
}

func TestResolveProgramNo_IgnoresQueryString(t *testing.T) {
	tree := []Item{{ProgramNo: "GL", Path: "/app/fcm/gl"}}
	got, ok := ResolveProgramNo("/app/fcm/gl?programNo=OTHER", tree)
	assert.True(t, ok)
	assert.Equal(t, "GL", got)
}

func TestResolveProgramNo_FileNameFallback(t *testing.T) {
	tree := []Item{
		{ProgramNo: "FX010", Path: "/src/pages/fcm/fx/FxEvaluation.tsx"},
	}
	got, ok := ResolveProgramNo("/legacy/fxevaluation", tree)
	assert.True(t, ok)
	assert.Equal(t, "FX010", got)
}

// Every menu route lives under /app, so the /app prefix alone matches the
// first menu in pre-order and the file name fallback only applies to paths
// outside /app.
func TestResolveProgramNo_AppRootShadowsFileNameFallback(t *testing.T) {
	tree := []Item{
		{ProgramNo: "GL", Path: "/app/fcm/gl"},
		{ProgramNo: "FX010", Path: "/src/pages/fcm/fx/FxEvaluation.tsx"},
	}

	got, ok := ResolveProgramNo("/app/legacy/fxevaluation", tree)
	assert.True(t, ok)
	assert.Equal(t, "GL", got)

	got, ok = ResolveProgramNo("/legacy/fxevaluation", tree)
	assert.True(t, ok)
	assert.Equal(t, "FX010", got)
}

func TestResolveProgramNo_NoMatch(t *testing.T) {
	tree := []Item{{ProgramNo: "GL", Path: "/app/fcm/gl"}}
	_, ok := ResolveProgramNo("/elsewhere/nothing", tree)
	assert.False(t, ok)

	_, ok = ResolveProgramNo("/", tree)
	assert.False(t, ok)

	_, ok = ResolveProgramNo("/app/fcm/gl", nil)
	assert.False(t, ok)
}

func TestResolveProgramNo_SkipsMenusWithoutPath(t *testing.T) {
	tree := []Item{
		{ProgramNo: "GROUP", Children: []Item{{ProgramNo: "LEAF", Path: "/app/ap/payment"}}},
	}
	got, ok := ResolveProgramNo("/app/ap/payment", tree)
	assert.True(t, ok)
	assert.Equal(t, "LEAF", got)
}

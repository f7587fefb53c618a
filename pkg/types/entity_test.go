//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntityCopiesInputs(t *testing.T) {
	uid := mustUID(t, "User", "alice")
	attrs := map[string]Value{"age": Long(30)}
	parents := []EntityUID{mustUID(t, "Group", "admins")}

	e, err := NewEntity(uid, attrs, parents, nil)
	require.NoError(t, err)

	// mutating the inputs must not affect the entity
	attrs["age"] = Long(99)
	parents[0] = mustUID(t, "Group", "nobody")

	v, ok := e.Attr("age")
	require.True(t, ok)
	assert.True(t, Long(30).Equal(v))
	assert.True(t, mustUID(t, "Group", "admins").Equal(e.Parents()[0]))

	// accessor results are copies too
	e.Attrs()["age"] = Long(0)
	v, _ = e.Attr("age")
	assert.True(t, Long(30).Equal(v))
}

func TestNewEntityRejectsBadInputs(t *testing.T) {
	_, err := NewEntity(EntityUID{}, nil, nil, nil)
	assert.Error(t, err)

	uid := mustUID(t, "User", "alice")
	_, err = NewEntity(uid, map[string]Value{"x": nil}, nil, nil)
	assert.Error(t, err)
	_, err = NewEntity(uid, nil, nil, map[string]Value{"x": nil})
	assert.Error(t, err)
}

func TestEntityJSONRoundTrip(t *testing.T) {
	uid := mustUID(t, "PhotoApp::User", "alice")
	parent := mustUID(t, "PhotoApp::Group", "admins")
	e, err := NewEntity(uid,
		map[string]Value{"age": Long(30), "active": Bool(true)},
		[]EntityUID{parent},
		map[string]Value{"dept": String("eng")})
	require.NoError(t, err)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out Entity
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, uid.Equal(out.UID()))
	assert.Equal(t, 1, len(out.Parents()))
	assert.True(t, parent.Equal(out.Parents()[0]))

	v, ok := out.Attr("age")
	require.True(t, ok)
	assert.True(t, Long(30).Equal(v))
	v, ok = out.Tag("dept")
	require.True(t, ok)
	assert.True(t, String("eng").Equal(v))
}

func TestEntityDecodeAcceptsBareUIDForm(t *testing.T) {
	doc := `{"uid":{"type":"User","id":"alice"},
	         "attrs":{"age":30},
	         "parents":[{"type":"Group","id":"admins"}],
	         "tags":{}}`
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(doc), &e))
	assert.True(t, mustUID(t, "User", "alice").Equal(e.UID()))
	assert.True(t, mustUID(t, "Group", "admins").Equal(e.Parents()[0]))
}

func TestEntityDecodeRequiresUID(t *testing.T) {
	var e Entity
	err := json.Unmarshal([]byte(`{"attrs":{},"parents":[],"tags":{}}`), &e)
	assert.Error(t, err)
}

func TestEntityDecodeOmittedCollectionsDefaultEmpty(t *testing.T) {
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(`{"uid":{"type":"User","id":"a"}}`), &e))
	assert.Empty(t, e.Attrs())
	assert.Empty(t, e.Parents())
	assert.Empty(t, e.Tags())
}

func TestEntitiesRejectDuplicateUIDs(t *testing.T) {
	uid := mustUID(t, "User", "alice")
	a, err := NewEntity(uid, nil, nil, nil)
	require.NoError(t, err)
	b, err := NewEntity(uid, map[string]Value{"age": Long(1)}, nil, nil)
	require.NoError(t, err)

	_, err = NewEntities(a, b)
	assert.Error(t, err)

	es, err := NewEntities(a)
	require.NoError(t, err)
	assert.Error(t, es.Add(b))
	assert.Equal(t, 1, es.Len())
}

func TestEntitiesLookupAndIteration(t *testing.T) {
	alice, err := NewEntity(mustUID(t, "User", "alice"), nil, nil, nil)
	require.NoError(t, err)
	bob, err := NewEntity(mustUID(t, "User", "bob"), nil, nil, nil)
	require.NoError(t, err)

	es, err := NewEntities(alice, bob)
	require.NoError(t, err)

	got, ok := es.Get(mustUID(t, "User", "bob"))
	require.True(t, ok)
	assert.True(t, bob.UID().Equal(got.UID()))

	_, ok = es.Get(mustUID(t, "User", "carol"))
	assert.False(t, ok)

	var seen []string
	es.Iterate(func(e Entity) bool {
		seen = append(seen, e.UID().ID())
		return true
	})
	assert.Equal(t, []string{"alice", "bob"}, seen)
}

func TestEntitiesJSONRoundTrip(t *testing.T) {
	alice, err := NewEntity(mustUID(t, "User", "alice"),
		map[string]Value{"age": Long(30)}, nil, nil)
	require.NoError(t, err)
	es, err := NewEntities(alice)
	require.NoError(t, err)

	data, err := json.Marshal(es)
	require.NoError(t, err)

	var out Entities
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 1, out.Len())
	got, ok := out.Get(mustUID(t, "User", "alice"))
	require.True(t, ok)
	v, ok := got.Attr("age")
	require.True(t, ok)
	assert.True(t, Long(30).Equal(v))
}

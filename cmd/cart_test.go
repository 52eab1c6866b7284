package cmd

import (
	"testing"

	"github.com/huangsam/storesync/schema"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIdentity(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().String("condition", string(schema.NewCondition), "")

	id, err := lineIdentity(c, "phoneA")
	require.NoError(t, err)
	assert.Equal(t, schema.LineIdentity{ProductID: "phoneA", Condition: schema.NewCondition}, id)

	require.NoError(t, c.Flags().Set("condition", "used"))
	id, err = lineIdentity(c, "phoneA")
	require.NoError(t, err)
	assert.Equal(t, schema.UsedCondition, id.Condition)

	require.NoError(t, c.Flags().Set("condition", "broken"))
	_, err = lineIdentity(c, "phoneA")
	assert.Error(t, err)
}

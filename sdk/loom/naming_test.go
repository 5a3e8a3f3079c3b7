package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyTableTranslation(t *testing.T) {
	table := NewPropertyTable(map[string]string{
		"security_group":  "securityGroup",
		"storage_classes": "storageClasses",
	})

	assert.Equal(t, "securityGroup", table.Wire("security_group"))
	assert.Equal(t, "storageClasses", table.Wire("storage_classes"))
	assert.Equal(t, "security_group", table.Local("securityGroup"))
	assert.Equal(t, "storage_classes", table.Local("storageClasses"))
}

func TestPropertyTableIdentityFallback(t *testing.T) {
	table := NewPropertyTable(map[string]string{"security_group": "securityGroup"})

	// Names without a table entry translate as themselves, in both directions.
	assert.Equal(t, "metadata", table.Wire("metadata"))
	assert.Equal(t, "metadata", table.Local("metadata"))

	// A nil table behaves like an empty one.
	var nilTable *PropertyTable
	assert.Equal(t, "anything", nilTable.Wire("anything"))
	assert.Equal(t, "anything", nilTable.Local("anything"))
}

func TestPropertyTableRoundTrip(t *testing.T) {
	pairs := map[string]string{
		"security_group":              "securityGroup",
		"storage_classes":             "storageClasses",
		"bucket_domain_name":          "bucketDomainName",
		"bucket_regional_domain_name": "bucketRegionalDomainName",
	}
	table := NewPropertyTable(pairs)

	for local, wire := range pairs {
		assert.Equal(t, local, table.Local(table.Wire(local)))
		assert.Equal(t, wire, table.Wire(table.Local(wire)))
	}
}

// *** WARNING: this file was generated by loomgen. ***
// *** Do not edit by hand unless you're certain you know what you are doing! ***

package example

import "github.com/loomstack/loom/sdk/loom"

// Naming tables for the example package, local (snake) to wire (camel). Names
// absent from a table translate as themselves.
var componentTable = loom.NewPropertyTable(map[string]string{
	"security_group":  "securityGroup",
	"storage_classes": "storageClasses",
})

package program

import "github.com/hashicorp/hcl/v2"

func diagnosticsFromError(err error) hcl.Diagnostics {
	return []*hcl.Diagnostic{{Severity: hcl.DiagError, Summary: err.Error()}}
}

func unknownResource(name string, subject hcl.Range) *hcl.Diagnostic {
	message := "unknown resource " + name
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  message,
		Detail:   message,
		Subject:  &subject,
	}
}

func malformedToken(token string, subject hcl.Range) *hcl.Diagnostic {
	message := "invalid resource type token " + token
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  message,
		Detail:   "resource type tokens must be of the form <package>:<module>:<member>",
		Subject:  &subject,
	}
}

func unknownFunction(name string, subject hcl.Range) *hcl.Diagnostic {
	message := "unknown function " + name
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  message,
		Detail:   message,
		Subject:  &subject,
	}
}

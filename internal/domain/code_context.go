package domain

// CodeContext is a bounded excerpt of source text plus structural metadata
// around a target line. Immutable once produced by the resolver.
type CodeContext struct {
	FilePath   string   `json:"file_path"`
	TargetLine int      `json:"target_line"`
	ClassName  string   `json:"class_name,omitempty"`
	MethodName string   `json:"method_name,omitempty"`
	MethodBody string   `json:"method_body,omitempty"`
	Lines      []string `json:"lines"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Imports    []string `json:"imports,omitempty"`
	Fields     []string `json:"fields,omitempty"`
}

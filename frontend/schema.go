package frontend

import "github.com/hashicorp/hcl/v2"

type fileSchema struct {
	Name    *string        `hcl:"name,optional"`
	Classes []*classSchema `hcl:"class,block"`
	Data    []*dataSchema  `hcl:"data,block"`
}

type classSchema struct {
	Name    string          `hcl:"name,label"`
	Methods []*methodSchema `hcl:"method,block"`
}

type methodSchema struct {
	Name         string       `hcl:"name,label"`
	Params       []*varSchema `hcl:"param,block"`
	Locals       []*varSchema `hcl:"local,block"`
	Result       string       `hcl:"result,optional"`
	Export       string       `hcl:"export,optional"`
	ImportModule string       `hcl:"import_module,optional"`
	Start        bool         `hcl:"start,optional"`
	Native       bool         `hcl:"native,optional"`
	Virtual      bool         `hcl:"virtual,optional"`
	Body         *bodySchema  `hcl:"body,block"`
	DeclRange    hcl.Range    `hcl:",def_range"`
}

type varSchema struct {
	Name      string    `hcl:"name,label"`
	Type      string    `hcl:"type"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type bodySchema struct {
	Body hcl.Body `hcl:",remain"`
}

type dataSchema struct {
	Offset int    `hcl:"offset"`
	Bytes  []int  `hcl:"bytes,optional"`
	Text   string `hcl:"text,optional"`
}

package processor

import (
	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

// buildConfigs derives the config descriptors of d in field order.
// Fields with violations are left out and their diagnostics returned.
func (p *Processor) buildConfigs(d *decl.Declaration) ([]descriptor.ConfigDescriptor, diag.DiagnosticList) {
	configs := make([]descriptor.ConfigDescriptor, 0, len(d.Fields))
	var diags diag.DiagnosticList

	for _, f := range d.ConfigFields() {
		kind, fieldDiags := p.validator.CheckField(d, f)
		if len(fieldDiags) > 0 {
			diags = append(diags, fieldDiags...)
			continue
		}
		configs = append(configs, buildConfig(f, kind))
	}
	return configs, diags
}

func buildConfig(f *decl.Field, kind descriptor.ValueKind) descriptor.ConfigDescriptor {
	name := f.Config.Name
	if name == "" {
		name = f.Name
	}
	return descriptor.ConfigDescriptor{
		Name:         name,
		FieldName:    f.Name,
		Kind:         kind,
		Label:        f.Config.Label,
		Description:  f.Config.Description,
		DefaultValue: f.Config.DefaultValue,
		Required:     f.Config.Required,
	}
}

func buildStage(d *decl.Declaration, category hierarchy.Category, configs []descriptor.ConfigDescriptor) *descriptor.StageDescriptor {
	onError, _ := descriptor.ParseOnError(d.Stage.OnError)
	return &descriptor.StageDescriptor{
		ClassName:   d.Name,
		Name:        d.Stage.Name,
		Version:     d.Stage.Version,
		Label:       d.Stage.Label,
		Description: d.Stage.Description,
		Type:        category,
		Configs:     configs,
		OnError:     onError,
	}
}

func buildErrorDef(d *decl.Declaration) *descriptor.ErrorDescriptor {
	literals := make([]descriptor.ErrorLiteral, len(d.Constants))
	for i, c := range d.Constants {
		literals[i] = descriptor.ErrorLiteral{Name: c.Name, Message: c.Value}
	}
	return &descriptor.ErrorDescriptor{EnumName: d.Name, Literals: literals}
}

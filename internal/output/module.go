package output

import (
	"github.com/brizzai/swagger-token/internal/flow"
	"go.uber.org/fx"
)

// Module provides the Printer, which also observes the flow
var Module = fx.Module("output",
	fx.Provide(
		NewPrinter,
		func(p *Printer) flow.Observer { return p },
	),
)

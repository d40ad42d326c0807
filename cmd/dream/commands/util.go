package commands

import (
	"fmt"
	"net/url"

	"github.com/salpyeo/dream/pkg/funcapp"
)

// hostForDisplay strips the path and query, which may carry an API key.
func hostForDisplay(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "realtime socket"
	}
	return u.Scheme + "://" + u.Host
}

// funcAppClient builds the function-app client of the current context
func funcAppClient() (*funcapp.Client, error) {
	ctx, err := resolveContext()
	if err != nil {
		return nil, err
	}
	if !ctx.HasFuncApp() {
		return nil, fmt.Errorf("context %q has no function app configured", ctx.Name)
	}
	return ctx.FuncAppClient()
}

package algod

import "github.com/algorandfoundation/algokit-go/composer"

// The client satisfies the composer's injected collaborator interfaces.
var (
	_ composer.ParamsSource = (*Client)(nil)
	_ composer.Submitter    = (*Client)(nil)
	_ composer.Simulator    = (*Client)(nil)
)

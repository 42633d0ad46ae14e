package main

import (
	"github.com/crucial707/asset-ledger/cmd/cli/assets"
	"github.com/crucial707/asset-ledger/cmd/cli/audit"
	"github.com/crucial707/asset-ledger/cmd/cli/auth"
	"github.com/crucial707/asset-ledger/cmd/cli/root"
)

func main() {
	auth.InitAuth(root.RootCmd)
	assets.InitAssets(root.RootCmd)
	audit.InitAudit(root.RootCmd)
	root.Execute()
}

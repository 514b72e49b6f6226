package common

// PackageName is used as the metrics namespace and default service tag.
const PackageName = "ipfs-vhost-gateway"

// Version is set at build time via -ldflags.
var Version = "dev"

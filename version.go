package docsum

// Version is set at build time with -ldflags "-X github.com/a-h/docsum.Version=...".
var Version = "devel"

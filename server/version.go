package server

// Version is the version string reported at startup and on /version.
// It is overridden at link time for release builds.
var Version = "devel"

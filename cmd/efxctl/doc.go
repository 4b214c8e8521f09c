// Command efxctl manages EFX light-show projects from the command line.
//
// Projects are stored as binary ".efx" timelines plus a JSON metadata
// catalog. Every subcommand opens the stores described by the configuration
// (see internal/config), performs one operation and exits.
package main

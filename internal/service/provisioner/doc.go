// Package provisioner installs the RustDesk client on the local machine and
// optionally points it at a self-hosted relay.
//
// A run is a fixed sequence of stages: resolve the requested version to a
// concrete release, download the installer artifact, run it unattended,
// append the relay/API/key directives to the client configuration file, and
// start the installed client. Resolution, download and installer failures
// abort the run; configuration and launch failures are downgraded to
// warnings because the primary objective, installation, already succeeded.
package provisioner

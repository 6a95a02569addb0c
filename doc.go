/*
Package main is the application package of tool5, a command-line tool for
decentralized identity operations:

	did    create, publish and resolve DIDs (did:dht, did:key)
	vc     issue and verify verifiable credentials as JWTs
	dwn    create, read, update and delete decentralized web node records
	agent  provision the local user agent which signs the credentials and
	       the DWN messages

Everything the tool writes goes under the tool home, $TOOL5_HOME or ~/.tool5
by default. A created DID writes its public document did.json and its private
portable-did.json under <out>/<did>/, where out defaults to
<home>/did/<action>. Keep the portable DID private, it holds the private keys.

# Sub-packages

	cmd      cobra commands and viper configuration of the CLI
	cmds     command objects: defaults, action validation and dispatch
	agent    framework packages: the DID, VC, DWN and agent façades, the
	         did:dht codecs and gateway client, VDR registry and storage
	method   DID methods, bearer DIDs and portable DID export and import
	core     shared interfaces

# Configuration

Every flag can be given as an environment variable, e.g. TOOL5_DID_GATEWAY
for the gateway of the did command, or in a configuration file given with
--config.
*/
package main

/*
Package agent holds the framework packages of the tool: the façades the
commands call and the services they are built on. The agent package is empty
itself. All the functionality is inside sub-packages.

	comm       HTTP calls and status errors of the gateway and DWN clients
	dht        did:dht identifiers, DNS packet codec, BEP44 envelopes,
	           gateway client and the VDR of the method
	dids       the DID façade: create, publish, republish and resolve
	dwn        the DWN façade: records write, read and delete messages
	storage    encrypted bolt storage, KMS and the agent's stores
	useragent  provisions and opens the local user agent
	utils      helpers for version, settings, home, ids, register, ..
	vc         the VC façade: issue and verify JWT credentials
	vdr        VDR registry of did:dht, did:key and did:web
*/
package agent

/*
Package credentials resolves which credential a request should present.

A Store maps Scopes (host, port, realm, auth scheme; each may be a
wildcard) to credentials. Lookups prefer an exact scope and otherwise pick
the most specific matching entry:

	store := credentials.NewStore()
	_ = store.Set(credentials.Any(), credentials.UsernamePassword{Username: "guest"})
	_ = store.Set(credentials.HostScope("intranet", 443), credentials.UsernamePassword{Username: "alice"})

	store.Get(credentials.Scope{Host: "intranet", Port: 443, Realm: "r"}) // alice
	store.Get(credentials.Scope{Host: "example.com", Port: 80})          // guest

Only UsernamePassword and NTLM credentials are accepted; Set rejects other
kinds with ErrCredentialType.

AuthCache holds completed authentication exchanges per host:port, shared by
every in-flight request of a client.
*/
package credentials

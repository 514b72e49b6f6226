/*
Package proxy implements the vhost resolution and request-rewriting engine.

Every non-control-plane request goes through three steps:

 1. Resolution: determine which vhost the request targets, from the Host
    header first (more specific and unambiguous) and the path second.
 2. Rewriting: translate the resolved vhost into the addressing scheme the
    downstream gateway expects. Gateways addressed by DNS name get subdomain
    addressing ("<cid>.ipfs.<host>"); IP-addressed gateways get path
    addressing ("/ipfs/<cid>/...").
 3. Forwarding: proxy the rewritten request to the gateway. Requests that
    resolve to no vhost pass through unchanged.

Resolution reads a point-in-time mapping snapshot and performs no I/O, so a
stale snapshot degrades to stale content, never to a failed request.
*/
package proxy

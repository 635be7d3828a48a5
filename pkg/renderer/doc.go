// Package renderer mounts and patches vnode trees onto a Host.
//
// The renderer is host agnostic: it drives a Host implementation (an
// in-memory document, a remote client, a recorder) through a small set of
// primitive operations and never touches host nodes directly.
//
// # Components
//
// A component vnode is mounted by creating an Instance, running the
// component's Setup once, and wrapping its render function in a reactive
// effect. When state read during render changes, the effect queues the
// instance's update job on the scheduler; the job re-renders and patches the
// previous subtree against the new one.
//
// A parent re-render patches child component vnodes. The child re-renders
// only when its props changed; otherwise it adopts the new vnode and keeps
// its subtree.
//
// # Reconciliation
//
// Children arrays are reconciled by key. Common prefixes and suffixes are
// patched in place; in the middle range, old nodes are matched to new ones by
// key and the longest increasing subsequence of their old positions stays
// put while the rest are moved.
//
// # Apps
//
//	r := renderer.New(host)
//	app := r.CreateApp(root, nil)
//	if err := app.Mount(container); err != nil {
//	    return err
//	}
package renderer

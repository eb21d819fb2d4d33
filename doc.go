// Package herofield animates an interactive particle field for a landing
// page hero section.
//
// # Overview
//
// A grid of particles covers the drawing surface. Each particle is
// elastically bound to its grid origin, pushed away from the pointer while
// it hovers nearby, damped, and pulled back once it leaves. The field is
// rasterized with gogpu/gg in a palette picked from the active light or
// dark theme, and the render loop goes idle once nothing moves.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/herofield"
//	    "github.com/gogpu/herofield/host/headless"
//	)
//
//	host := headless.New(headless.WithSize(800, 600))
//	h, err := herofield.Mount(host, herofield.WithGridSpacing(40))
//	if err != nil {
//	    return err
//	}
//	defer h.Unmount()
//
//	host.MovePointer(400, 300)
//	host.AdvanceN(60)
//
// # Hosts
//
// Mount only talks to a Host: a frame scheduler, a layout box, a
// presenter and pointer/resize subscriptions. Two hosts ship with the
// module:
//   - host/term: an interactive terminal host built on tcell
//   - host/headless: a virtual-clock host for tests and offline rendering
//
// When a host cannot present frames Mount returns ErrCapability and the
// caller shows a static background instead.
//
// # Coordinate System
//
// All simulation and drawing coordinates are CSS pixels with the origin at
// the top-left corner of the surface. The surface backing store is sized
// in device pixels (CSS size times the device pixel ratio) and scaled
// once, so the simulation never sees the ratio.
//
// # Concurrency
//
// Everything runs on the host's frame goroutine. Handle, Field, Pointer,
// Driver and surface.Surface are not safe for concurrent use; work from
// other goroutines must be handed to the host (term.Host.Post).
package herofield

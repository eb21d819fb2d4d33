// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface owns the raster target of a hero animation.
//
// A Surface wraps a gg.Context whose backing store is sized in device
// pixels while every draw call is expressed in CSS pixels:
//
//	backing = round(css * dpr)
//	transform = Scale(dpr, dpr)
//
// so strokes stay crisp on high-density displays and the simulation never
// needs to know the device pixel ratio.
//
// # Usage
//
//	s := surface.New()
//	defer s.Close()
//
//	if _, err := s.Configure(800, 600, 2); err != nil {
//	    return err
//	}
//	_ = s.Draw(func(dc *gg.Context) {
//	    dc.SetRGB(1, 0, 0)
//	    dc.DrawCircle(400, 300, 10) // CSS px
//	    _ = dc.Fill()
//	})
//
// # Zero-area surfaces
//
// Configuring a zero width or height is not an error. The backing store is
// released, Empty reports true and Draw becomes a no-op until the next
// non-empty Configure.
//
// # Thread Safety
//
// Surface is NOT safe for concurrent use.
package surface

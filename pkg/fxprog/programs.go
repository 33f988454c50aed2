// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package fxprog

// DefaultPrograms are stored into an empty store on startup unless
// WithNoDefaults is given.
var DefaultPrograms = []Program{
	{Name: "quadratic", Source: "? -> A: ? -> B: ? -> C: B^2 - 4AC -> D: (neg B + sqrt(D)) div (2A) disp (neg B - sqrt(D)) div (2A)"},
	{Name: "countdown", Source: "? -> A: Lbl 1: A-1 -> A disp A => Goto 1"},
	{Name: "sum", Source: "0 -> A: Lbl 1: ? -> B: A+B -> A disp Goto 1"},
	{Name: "polar", Source: "? -> X: ? -> Y: Pol(X, Y) disp Y"},
	{Name: "factorial", Source: "? -> A: A!"},
}

/*
Package klatt implements a cascade/parallel formant speech synthesizer in the
tradition of Klatt (1980, 1990). It is a grandchild of Dennis Klatt's
original implementation, by way of the classic Holmes/Klatt/Iles &
Ing-Simmons "parwave" lineage.

Given a sequence of time-indexed acoustic parameter frames (fundamental
frequency, formant frequencies and bandwidths, source amplitudes, noise
levels) it produces a monophonic floating-point audio signal at a
configurable sample rate. It is a pure signal generator: no file I/O, no
audio device, no user interface. Those concerns live in separate packages
(see internal/config, internal/synthsvc, cmd/klattgen, cmd/klattd) that
consume this package's public surface.

This program is free software; you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation; either version 1, or (at your option)
any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.
*/
package klatt

// MaxOralFormants is the fixed number of oral formant slots a frame carries.
const MaxOralFormants = 6

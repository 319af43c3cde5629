// Package attitude computes spacecraft pointing quantities from attitude
// quaternions and the solar position: off-nominal roll, pitch and the
// equatorial pointing of the boresight.
package attitude

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const deg = 180 / math.Pi

// Quat is an attitude quaternion in telemetry order: vector part q1..q3
// followed by the scalar q4. It rotates body-frame vectors into ECI.
type Quat [4]float64

func (q Quat) number() quat.Number {
	n := quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}
	if a := quat.Abs(n); a > 0 && a != 1 {
		n = quat.Scale(1/a, n)
	}
	return n
}

// ToECI rotates a body-frame vector into ECI.
func (q Quat) ToECI(v r3.Vec) r3.Vec {
	return r3.Rotation(q.number()).Rotate(v)
}

// ToBody rotates an ECI vector into the body frame.
func (q Quat) ToBody(v r3.Vec) r3.Vec {
	return r3.Rotation(quat.Conj(q.number())).Rotate(v)
}

// Transform returns the body-to-ECI rotation as the images of the body
// axes: columns x, y and z.
func (q Quat) Transform() [3]r3.Vec {
	return [3]r3.Vec{
		q.ToECI(r3.Vec{X: 1}),
		q.ToECI(r3.Vec{Y: 1}),
		q.ToECI(r3.Vec{Z: 1}),
	}
}

// Equatorial returns the RA and Dec of the body X axis and the roll about
// it, all in degrees, RA and roll in [0, 360).
func (q Quat) Equatorial() (ra, dec, roll float64) {
	cols := q.Transform()
	x, y, z := cols[0], cols[1], cols[2]
	ra = math.Atan2(x.Y, x.X) * deg
	dec = math.Atan2(x.Z, math.Sqrt(math.Max(0, 1-x.Z*x.Z))) * deg
	roll = math.Atan2(y.Z, z.Z) * deg
	if ra < 0 {
		ra += 360
	}
	if roll < 0 {
		roll += 360
	}
	return ra, dec, roll
}

// FromTransform builds the quaternion whose body axes map to the ECI unit
// vectors x, y and z, which must form a right-handed orthonormal set.
func FromTransform(x, y, z r3.Vec) Quat {
	// m[i][j] is row i, column j of the rotation matrix with columns x, y, z.
	m := [3][3]float64{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
	var w, qx, qy, qz float64
	switch tr := m[0][0] + m[1][1] + m[2][2]; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		w = s / 4
		qx = (m[2][1] - m[1][2]) / s
		qy = (m[0][2] - m[2][0]) / s
		qz = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		w = (m[2][1] - m[1][2]) / s
		qx = s / 4
		qy = (m[0][1] + m[1][0]) / s
		qz = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		w = (m[0][2] - m[2][0]) / s
		qx = (m[0][1] + m[1][0]) / s
		qy = s / 4
		qz = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		w = (m[1][0] - m[0][1]) / s
		qx = (m[0][2] + m[2][0]) / s
		qy = (m[1][2] + m[2][1]) / s
		qz = s / 4
	}
	if w < 0 {
		w, qx, qy, qz = -w, -qx, -qy, -qz
	}
	return Quat{qx, qy, qz, w}
}

// RADecToECI returns the unit vector for a sky position in degrees.
func RADecToECI(ra, dec float64) r3.Vec {
	ra /= deg
	dec /= deg
	return r3.Vec{
		X: math.Cos(ra) * math.Cos(dec),
		Y: math.Sin(ra) * math.Cos(dec),
		Z: math.Sin(dec),
	}
}

// OffNominalRoll returns the roll, in degrees within [-180, 180), of
// attitude q away from the sun-optimal (nominal) roll at CXC time secs.
// At nominal roll the sun lies in the body X-Z plane on the -Z side.
func OffNominalRoll(q Quat, secs float64) float64 {
	ra, dec := SunPosition(secs)
	sun := q.ToBody(RADecToECI(ra, dec))
	return wrap180(math.Atan2(-sun.Y, -sun.Z) * deg)
}

// Pitch returns the sun pitch angle in degrees: the angle between the
// boresight (body X) and the sun at CXC time secs.
func Pitch(q Quat, secs float64) float64 {
	ra, dec := SunPosition(secs)
	x := q.ToECI(r3.Vec{X: 1})
	c := r3.Dot(x, RADecToECI(ra, dec))
	return math.Acos(math.Max(-1, math.Min(1, c))) * deg
}

// CalcOffNomRolls evaluates OffNominalRoll for each state interval at the
// midpoint of its start and stop times. The three slices are read up to the
// length of the shortest.
func CalcOffNomRolls(tstart, tstop []float64, q []Quat) []float64 {
	n := min(len(tstart), len(tstop), len(q))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = OffNominalRoll(q[i], 0.5*(tstart[i]+tstop[i]))
	}
	return out
}

func wrap180(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

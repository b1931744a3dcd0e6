package solver

// RK45 is the Dormand-Prince 5(4) embedded Runge-Kutta pair.
type RK45 struct{}

var dopri = struct {
	c    [7]float64
	a    [7][6]float64
	b    [7]float64
	bErr [7]float64
}{
	c: [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	a: [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	b: [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
	// Fifth-order weights minus the embedded fourth-order ones.
	bErr: [7]float64{
		71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40,
	},
}

func (RK45) Name() string { return "rk45" }
func (RK45) Order() int   { return 4 }

func (RK45) Step(f RHSFunc, t, h float64, y []float64) ([]float64, []float64, error) {
	n := len(y)
	var k [7][]float64
	stage := make([]float64, n)
	for s := range k {
		k[s] = make([]float64, n)
		copy(stage, y)
		for j := 0; j < s; j++ {
			if a := dopri.a[s][j]; a != 0 {
				for i := range stage {
					stage[i] += h * a * k[j][i]
				}
			}
		}
		if err := f(t+dopri.c[s]*h, stage, k[s]); err != nil {
			return nil, nil, err
		}
	}
	next := make([]float64, n)
	errEst := make([]float64, n)
	copy(next, y)
	for s := range k {
		b, e := dopri.b[s], dopri.bErr[s]
		for i := range next {
			next[i] += h * b * k[s][i]
			errEst[i] += h * e * k[s][i]
		}
	}
	return next, errEst, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrTargetUnreachable is returned when the vehicle exceeds MaxStepsPerTarget
// without reaching the current target.
var ErrTargetUnreachable = errors.New("target not reached within step limit")

// VehicleParams are the kinematic parameters of the car
type VehicleParams struct {
	Wheelbase             float64 `json:"wheelbase"`             // meters
	Speed                 float64 `json:"speed"`                 // meters per second
	TimeStep              float64 `json:"timeStep"`              // seconds
	ArrivalThreshold      float64 `json:"arrivalThreshold"`      // meters
	HeadingUpdateInterval int     `json:"headingUpdateInterval"` // steps between heading re-aims
	MaxStepsPerTarget     int     `json:"maxStepsPerTarget"`
}

// DefaultVehicleParams returns the parameters of the 1:10 competition car
func DefaultVehicleParams() VehicleParams {
	return VehicleParams{
		Wheelbase:             0.264,
		Speed:                 0.3,
		TimeStep:              0.02,
		ArrivalThreshold:      0.03,
		HeadingUpdateInterval: 2,
		MaxStepsPerTarget:     100000,
	}
}

// Validate rejects parameters the kinematic model cannot run with
func (p VehicleParams) Validate() error {
	switch {
	case p.Wheelbase <= 0:
		return fmt.Errorf("wheelbase must be positive, got %v", p.Wheelbase)
	case p.Speed <= 0:
		return fmt.Errorf("speed must be positive, got %v", p.Speed)
	case p.TimeStep <= 0:
		return fmt.Errorf("time step must be positive, got %v", p.TimeStep)
	case p.ArrivalThreshold <= 0:
		return fmt.Errorf("arrival threshold must be positive, got %v", p.ArrivalThreshold)
	case p.HeadingUpdateInterval < 0:
		return fmt.Errorf("heading update interval must not be negative, got %d", p.HeadingUpdateInterval)
	case p.MaxStepsPerTarget <= 0:
		return fmt.Errorf("max steps per target must be positive, got %d", p.MaxStepsPerTarget)
	}
	return nil
}

// Vehicle is the car pose; Heading is in radians
type Vehicle struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// SteeringAngle calculates the Ackermann steering angle for the car to reach a target point
func SteeringAngle(v Vehicle, target Point, wheelbase float64) float64 {
	dx := target.X - v.X
	dy := target.Y - v.Y

	// Transform the target point to the car's coordinate frame
	localX := dx*math.Cos(-v.Heading) - dy*math.Sin(-v.Heading)
	localY := dx*math.Sin(-v.Heading) + dy*math.Cos(-v.Heading)

	const eps = 1e-3
	switch {
	case math.Abs(localY) < eps:
		if localX > 0 {
			return math.Pi / 2
		} else if localX < 0 {
			return -math.Pi / 2
		}
		return 0
	case math.Abs(localX) < eps:
		if localY > 0 {
			return 0
		}
		return math.Pi
	}

	radius := (localX*localX + localY*localY) / (2 * localY)
	return math.Atan(wheelbase / radius)
}

// normalizeAngle maps theta into [-pi, pi)
func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}

// Advance applies one kinematic bicycle-model update
func Advance(v Vehicle, steering float64, p VehicleParams) Vehicle {
	v.X += p.Speed * math.Cos(v.Heading) * p.TimeStep
	v.Y += p.Speed * math.Sin(v.Heading) * p.TimeStep
	v.Heading += (p.Speed / p.Wheelbase) * math.Tan(steering) * p.TimeStep
	v.Heading = normalizeAngle(v.Heading)
	return v
}

// HeadingTo returns the heading that points the car straight at target
func HeadingTo(v Vehicle, target Point) float64 {
	return math.Atan2(target.Y-v.Y, target.X-v.X)
}

// StepResult describes one simulated time step
type StepResult struct {
	Step        int     `json:"step"`
	TargetIndex int     `json:"targetIndex"`
	Vehicle     Vehicle `json:"vehicle"`
	Steering    float64 `json:"steering"`
	Distance    float64 `json:"distance"` // to the current target before the update
	Reached     bool    `json:"reached"`
}

// Navigator holds the whole simulation state. An external loop drives it
// by calling Step until it reports done.
type Navigator struct {
	Params  VehicleParams
	Vehicle Vehicle
	Targets []Point

	target      int // index into Targets
	step        int // total steps taken
	targetSteps int // steps spent on the current target
	err         error
}

// NewNavigator places the car on the first point and targets the rest
func NewNavigator(points []Point, params VehicleParams) (*Navigator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, errors.New("navigator needs at least one point")
	}

	return &Navigator{
		Params:  params,
		Vehicle: Vehicle{X: points[0].X, Y: points[0].Y},
		Targets: points[1:],
	}, nil
}

// Done reports whether every target has been reached or the run failed
func (n *Navigator) Done() bool {
	return n.err != nil || n.target >= len(n.Targets)
}

// Err returns the failure that stopped the navigator, if any
func (n *Navigator) Err() error { return n.err }

// TargetIndex returns the index of the target currently being approached
func (n *Navigator) TargetIndex() int { return n.target }

// Step advances the simulation by one time step. ok is false once Done.
func (n *Navigator) Step() (StepResult, bool) {
	if n.Done() {
		return StepResult{}, false
	}

	target := n.Targets[n.target]
	steering := SteeringAngle(n.Vehicle, target, n.Params.Wheelbase)
	distance := math.Hypot(target.X-n.Vehicle.X, target.Y-n.Vehicle.Y)

	res := StepResult{
		Step:        n.step,
		TargetIndex: n.target,
		Steering:    steering,
		Distance:    distance,
	}

	if distance < n.Params.ArrivalThreshold {
		res.Reached = true
		res.Vehicle = n.Vehicle
		n.target++
		n.targetSteps = 0
		return res, true
	}

	if n.targetSteps >= n.Params.MaxStepsPerTarget {
		n.err = fmt.Errorf("%w: target %d at (%.2f, %.2f)", ErrTargetUnreachable, n.target, target.X, target.Y)
		return StepResult{}, false
	}

	n.Vehicle = Advance(n.Vehicle, steering, n.Params)
	if n.Params.HeadingUpdateInterval > 0 && n.step%n.Params.HeadingUpdateInterval == 0 {
		n.Vehicle.Heading = HeadingTo(n.Vehicle, target)
	}

	n.step++
	n.targetSteps++
	res.Vehicle = n.Vehicle
	return res, true
}

// Drive runs the navigator to completion, calling observe after every step
func Drive(ctx context.Context, n *Navigator, observe func(StepResult)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, ok := n.Step()
		if !ok {
			return n.Err()
		}
		if observe != nil {
			observe(res)
		}
	}
}

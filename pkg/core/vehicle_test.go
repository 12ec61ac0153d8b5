package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEastbound(x, speed float64) *Vehicle {
	v := NewVehicle("car-1", "ABC1234")
	v.SetPosition(NewPoint(x, 0))
	v.SetFacing(East)
	v.SetSpeed(speed)
	v.currentRoad = "Main Road"
	return v
}

func TestVehicleKinematics(t *testing.T) {
	t.Run("Cruising east at 25 m/s for one second", func(t *testing.T) {
		v := newEastbound(0, 25)
		env := newTestEnv(1, &scriptedRandom{}, nil)

		v.Move(nil, env)

		assert.InDelta(t, 2.5, v.Position().X, 1e-9)
		assert.Equal(t, 0.0, v.Position().Y)
		assert.Equal(t, StateMoving, v.State())
	})

	t.Run("Each facing moves along its axis", func(t *testing.T) {
		cases := map[Direction]Point{
			North: NewPoint(0, 1),
			South: NewPoint(0, -1),
			East:  NewPoint(1, 0),
			West:  NewPoint(-1, 0),
		}
		for facing, want := range cases {
			v := NewVehicle("car", "PLATE00")
			v.SetFacing(facing)
			v.SetSpeed(10)
			v.Move(nil, newTestEnv(1, &scriptedRandom{}, nil))
			assert.Equal(t, want, v.Position(), facing.String())
		}
	})

	t.Run("Accelerates toward target speed", func(t *testing.T) {
		v := newEastbound(0, 20)
		v.speed = 10
		env := newTestEnv(1, &scriptedRandom{}, nil)

		v.Move(nil, env)
		assert.Equal(t, 12.5, v.Speed())

		for i := 0; i < 10; i++ {
			v.Move(nil, env)
		}
		assert.Equal(t, 20.0, v.Speed())
	})

	t.Run("Braking to a stop within one tick", func(t *testing.T) {
		v := newEastbound(50, 4)
		v.state = StateBraking
		v.pendingTurn = TurnStraight
		env := newTestEnv(1, &scriptedRandom{}, nil)

		v.Move(nil, env)

		assert.Equal(t, StateStopped, v.State())
		assert.Equal(t, 0.0, v.Speed())
		assert.Equal(t, 50.0, v.Position().X)
	})

	t.Run("Stopped vehicles do not move", func(t *testing.T) {
		v := newEastbound(50, 0)
		v.state = StateStopped
		v.Move(nil, newTestEnv(1, &scriptedRandom{}, nil))

		assert.Equal(t, 50.0, v.Position().X)
	})

	t.Run("Speed in km/h is truncated", func(t *testing.T) {
		v := newEastbound(0, 25)
		assert.Equal(t, 90.0, v.SpeedKmh())

		v.SetSpeed(20.123)
		assert.Equal(t, 72.44, v.SpeedKmh())
	})

	t.Run("Motion while reasoning panics", func(t *testing.T) {
		v := newEastbound(0, 10)
		v.state = StateReasoning
		assert.Panics(t, func() { v.Move(nil, newTestEnv(1, &scriptedRandom{}, nil)) })
	})

	t.Run("Undeclared transition panics", func(t *testing.T) {
		v := newEastbound(0, 10)
		assert.Panics(t, func() { v.setState(StateStopped, nil) })
	})
}

func TestVehicleApproach(t *testing.T) {
	ix := newTestIntersection(nil)
	params := DefaultParams()

	t.Run("Window is inclusive on x and exclusive on y", func(t *testing.T) {
		v := newEastbound(90, 20)
		assert.True(t, v.IsApproaching(ix, &params))

		v.SetPosition(NewPoint(89.99, 0))
		assert.False(t, v.IsApproaching(ix, &params))

		v.SetPosition(NewPoint(100, -10))
		assert.False(t, v.IsApproaching(ix, &params))

		v.SetPosition(NewPoint(100, -9.99))
		assert.True(t, v.IsApproaching(ix, &params))
	})

	t.Run("Binding sets the stop target and axis", func(t *testing.T) {
		v := newEastbound(91, 20)
		env := newTestEnv(1.0/60, &scriptedRandom{}, nil)
		v.Bind(ix, env)

		require.NotNil(t, v.Binding())
		assert.Equal(t, Binding{Intersection: 0, Axis: AxisEastWest}, *v.Binding())
		require.NotNil(t, v.StopTarget())
		assert.Equal(t, NewPoint(95, 0), *v.StopTarget())
		assert.Equal(t, StateApproaching, v.State())
		assert.False(t, v.IsApproaching(ix, &params))
	})

	t.Run("Stop targets for every facing", func(t *testing.T) {
		center := NewPoint(200, 0)
		cases := []struct {
			facing Direction
			from   Point
			want   Point
		}{
			{East, NewPoint(192, 0), NewPoint(195, 0)},
			{West, NewPoint(208, 0), NewPoint(205, 0)},
			{North, NewPoint(200, -8), NewPoint(200, -5)},
			{South, NewPoint(200, 8), NewPoint(200, 5)},
		}
		for _, tc := range cases {
			v := NewVehicle("car", "PLATE00")
			v.SetFacing(tc.facing)
			v.SetPosition(tc.from)
			assert.Equal(t, tc.want, v.stopPointFor(center, 5), tc.facing.String())
		}
	})
}

func TestVehicleProtocol(t *testing.T) {
	dt := 1.0 / 60.0

	t.Run("Right turn goes straight into the turn", func(t *testing.T) {
		observer := &TestObserver{}
		notify := NewObserverManager()
		notify.AddObserver(observer)
		ix := newTestIntersection(notify)
		v := newEastbound(88, 25)
		env := newTestEnv(dt, &scriptedRandom{ints: []int{turnDraw(TurnRight)}}, notify)

		for i := 0; i < 60*20 && v.Facing() == East; i++ {
			driveTick(ix, v, env)
		}

		assert.Equal(t, South, v.Facing())
		assert.Equal(t, StateContinuing, v.State())
		assert.Equal(t, "1st St.", v.CurrentRoad())
		assert.InDelta(t, 100, v.Position().X, 0.1)

		for i := 0; i < 60*20 && v.State() != StateMoving; i++ {
			driveTick(ix, v, env)
		}

		assert.Equal(t, StateMoving, v.State())
		assert.Nil(t, v.Binding())
		assert.Nil(t, v.StopTarget())
		assert.Equal(t, TurnNone, v.PendingTurn())
		assert.Equal(t, 0.0, v.TurnProgress())
		assert.Less(t, v.Position().Y, -10.5)
		assert.Equal(t, []VehicleState{
			StateApproaching, StateReasoning, StateTurning, StateContinuing, StateMoving,
		}, observer.States())
	})

	t.Run("Straight through a green light", func(t *testing.T) {
		ix := newTestIntersection(nil)
		v := newEastbound(88, 25)
		env := newTestEnv(dt, &scriptedRandom{ints: []int{turnDraw(TurnStraight)}}, nil)

		for i := 0; i < 60*5 && v.State() != StateContinuing; i++ {
			driveTick(ix, v, env)
		}
		assert.Equal(t, StateContinuing, v.State())
		assert.Equal(t, 25.0, v.Speed())

		for i := 0; i < 60*10 && v.State() != StateMoving; i++ {
			driveTick(ix, v, env)
		}
		assert.Equal(t, StateMoving, v.State())
		assert.Equal(t, East, v.Facing())
		assert.Equal(t, "Main Road", v.CurrentRoad())
	})

	t.Run("Straight against red stops and waits for green", func(t *testing.T) {
		ix := newTestIntersection(nil)
		ix.EW().holdRed()
		v := NewVehicle("car-2", "XYZ9876")
		v.SetPosition(NewPoint(100, -12))
		v.SetFacing(North)
		v.SetSpeed(20)
		env := newTestEnv(dt, &scriptedRandom{ints: []int{turnDraw(TurnStraight)}}, nil)

		for i := 0; i < 60*10 && v.State() != StateStopped; i++ {
			driveTick(ix, v, env)
		}
		require.Equal(t, StateStopped, v.State())
		assert.Less(t, v.Position().Y, -4.9)

		// the north-south green arrives 29 seconds after construction
		for i := 0; i < 60*40 && v.State() == StateStopped; i++ {
			driveTick(ix, v, env)
		}
		assert.Equal(t, StateContinuing, v.State())
		assert.True(t, ix.NS().IsStraightGreen())
	})

	t.Run("Left turn waits for the turn phase", func(t *testing.T) {
		observer := &TestObserver{}
		notify := NewObserverManager()
		notify.AddObserver(observer)
		ix := newTestIntersection(notify)
		v := newEastbound(85, 25)
		env := newTestEnv(dt, &scriptedRandom{ints: []int{turnDraw(TurnLeft)}}, notify)
		env.Params.TurnRetryInterval = 100

		sawRequest := false
		sawWaiting := false
		for i := 0; i < 60*120 && v.Facing() == East; i++ {
			env.Now = float64(i) * dt
			driveTick(ix, v, env)
			if v.State() == StateStopped {
				sawRequest = sawRequest || v.Wait().Kind == RequestPending
				sawWaiting = sawWaiting || v.Wait().Kind == WaitingSince
			}
		}

		assert.True(t, sawRequest)
		assert.True(t, sawWaiting)
		assert.Equal(t, North, v.Facing())
		assert.Equal(t, "1st St.", v.CurrentRoad())
		assert.Equal(t, Wait{}, v.Wait())
		assert.Equal(t, []Axis{AxisEastWest}, observer.TurnRequests)
		assert.Equal(t, []Axis{AxisEastWest}, observer.TurnGrants)
		assert.False(t, ix.EW().WaitingTurnRequest())

		for i := 0; i < 60*20 && v.State() != StateMoving; i++ {
			driveTick(ix, v, env)
		}
		assert.Equal(t, StateMoving, v.State())
		assert.Greater(t, v.Position().Y, 10.5)
	})

	t.Run("Stopped left turner retries after the interval", func(t *testing.T) {
		ix := newTestIntersection(nil)
		v := newEastbound(95, 0)
		v.binding = &Binding{Intersection: 0, Axis: AxisEastWest}
		v.stopTarget = &Point{X: 95}
		v.pendingTurn = TurnLeft
		v.state = StateStopped
		env := newTestEnv(dt, &scriptedRandom{}, nil)

		env.Now = 1
		v.CheckLight(ix, env)
		assert.Equal(t, RequestPending, v.Wait().Kind)
		assert.True(t, ix.EW().WaitingTurnRequest())

		env.Now = 2
		v.CheckLight(ix, env)
		assert.Equal(t, Wait{Kind: WaitingSince, Since: 2}, v.Wait())

		env.Now = 31.9
		v.CheckLight(ix, env)
		assert.Equal(t, WaitingSince, v.Wait().Kind)

		env.Now = 32
		v.CheckLight(ix, env)
		assert.Equal(t, RequestPending, v.Wait().Kind)
	})
}

func TestVehicleRespawn(t *testing.T) {
	params := DefaultParams()
	main := NewMainRoad(&params)
	side := NewSideRoad("2nd St.", 2, &params)

	t.Run("Facing follows the entry point", func(t *testing.T) {
		cases := []struct {
			road  Road
			end   int
			want  Direction
			where Point
		}{
			{main, 0, East, NewPoint(0, 0)},
			{main, 1, West, NewPoint(400, 0)},
			{side, 0, South, NewPoint(200, 50)},
			{side, 1, North, NewPoint(200, -50)},
		}
		for _, tc := range cases {
			v := NewVehicle("car", "PLATE00")
			v.Respawn(tc.road, tc.road.SpawnPoints[tc.end], 20, nil)
			assert.Equal(t, tc.want, v.Facing())
			assert.Equal(t, tc.where, v.Position())
			assert.Equal(t, tc.road.Name, v.CurrentRoad())
		}
	})

	t.Run("Respawn clears the negotiation", func(t *testing.T) {
		v := newEastbound(97, 0)
		v.binding = &Binding{Intersection: 0, Axis: AxisEastWest}
		v.stopTarget = &Point{X: 95}
		v.pendingTurn = TurnLeft
		v.turnProgress = 3
		v.wait = Wait{Kind: WaitingSince, Since: 4}
		v.state = StateTurning

		v.Respawn(side, side.SpawnPoints[1], 18, nil)

		assert.Equal(t, StateMoving, v.State())
		assert.Nil(t, v.Binding())
		assert.Nil(t, v.StopTarget())
		assert.Equal(t, TurnNone, v.PendingTurn())
		assert.Equal(t, 0.0, v.TurnProgress())
		assert.Equal(t, Wait{}, v.Wait())
		assert.Equal(t, 18.0, v.Speed())
		assert.Equal(t, 18.0, v.TargetSpeed())
		assert.Equal(t, "car-1", v.ID())
		assert.Equal(t, "ABC1234", v.Plate())
	})
}

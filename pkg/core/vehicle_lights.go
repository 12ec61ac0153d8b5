package core

import "fmt"

// CheckLight runs one tick of the intersection protocol for a bound vehicle:
// it decides, from the pending turn and the bound signal, whether the
// vehicle proceeds, brakes, waits or turns, then moves it.
func (v *Vehicle) CheckLight(ix *Intersection, env *Env) {
	if v.binding == nil {
		panic(fmt.Sprintf("core: vehicle %s: light check while unbound", v.id))
	}
	sig := ix.Signal(v.binding.Axis)

	switch v.state {
	case StateApproaching:
		v.pendingTurn = RandomTurn(env.Random)
		v.setState(StateReasoning, env.Observers)
		v.CheckLight(ix, env)

	case StateReasoning, StateBraking:
		if next, ok := v.proceedState(ix, sig); ok {
			v.setState(next, env.Observers)
		} else if v.state == StateReasoning {
			v.setState(StateBraking, env.Observers)
		}
		v.Move(ix, env)

	case StateStopped:
		v.checkFromStop(ix, sig, env)

	case StateTurning, StateContinuing:
		v.Move(ix, env)

	case StateMoving:
		// a bound vehicle is never Moving

	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown state %d", v.id, int(v.state)))
	}
}

// proceedState returns the state a vehicle may enter without stopping.
func (v *Vehicle) proceedState(ix *Intersection, sig *Signal) (VehicleState, bool) {
	switch v.pendingTurn {
	case TurnStraight:
		if sig.IsStraightGreen() || v.IsPastStopLine(ix.Position()) {
			return StateContinuing, true
		}
	case TurnLeft:
		if sig.IsTurnGreen() {
			return StateTurning, true
		}
	case TurnRight:
		return StateTurning, true
	default:
		panic(fmt.Sprintf("core: vehicle %s: no turn chosen in %s", v.id, v.state))
	}
	return v.state, false
}

func (v *Vehicle) checkFromStop(ix *Intersection, sig *Signal, env *Env) {
	switch v.pendingTurn {
	case TurnStraight:
		if sig.IsStraightGreen() {
			v.setState(StateContinuing, env.Observers)
			v.Move(ix, env)
		}
	case TurnRight:
		v.setState(StateTurning, env.Observers)
		v.Move(ix, env)
	case TurnLeft:
		if sig.IsTurnGreen() {
			v.wait = Wait{}
			v.setState(StateTurning, env.Observers)
			v.Move(ix, env)
			return
		}
		v.waitForTurn(ix, sig, env)
	default:
		panic(fmt.Sprintf("core: vehicle %s: stopped without a turn", v.id))
	}
}

// waitForTurn keeps a turn request alive for a stopped left-turner and
// resubmits it once the retry interval has passed.
func (v *Vehicle) waitForTurn(ix *Intersection, sig *Signal, env *Env) {
	if !sig.WaitingTurnRequest() {
		v.requestTurn(ix, sig, env)
		return
	}
	switch v.wait.Kind {
	case NotWaiting, RequestPending:
		v.wait = Wait{Kind: WaitingSince, Since: env.Now}
	case WaitingSince:
		if env.Now-v.wait.Since >= env.Params.TurnRetryInterval {
			v.requestTurn(ix, sig, env)
		}
	}
}

func (v *Vehicle) requestTurn(ix *Intersection, sig *Signal, env *Env) {
	sig.RequestTurnGreen()
	v.wait = Wait{Kind: RequestPending}
	env.Observers.NotifyTurnRequested(ix.Snapshot(), sig.Axis(), v.id)
}

package host

import "github.com/lox/spelljack/internal/game"

// Subscriber turns round results into host notifications.
//
//	win, perfect -> success haptic and outcome notification
//	perfect      -> share request
//	loss         -> error haptic and outcome notification
//	push         -> outcome notification
//	aborted      -> warning haptic
type Subscriber struct {
	notifier Notifier
}

// NewSubscriber creates a Subscriber forwarding to n.
func NewSubscriber(n Notifier) *Subscriber {
	return &Subscriber{notifier: n}
}

// OnEvent implements game.EventSubscriber.
func (s *Subscriber) OnEvent(event game.GameEvent) {
	end, ok := event.(game.RoundEndEvent)
	if !ok {
		return
	}
	o := end.Outcome
	switch o.Result {
	case game.ResultPlayerWin, game.ResultPerfect:
		s.notifier.Haptic(HapticSuccess)
		s.notifier.NotifyOutcome(o.Result.String(), o.PlayerScore)
		if o.Result == game.ResultPerfect {
			s.notifier.ShareScore(o.PlayerScore)
		}
	case game.ResultDealerWin:
		s.notifier.Haptic(HapticError)
		s.notifier.NotifyOutcome(o.Result.String(), o.PlayerScore)
	case game.ResultPush:
		s.notifier.NotifyOutcome(o.Result.String(), o.PlayerScore)
	case game.ResultInsufficientCards:
		s.notifier.Haptic(HapticWarning)
	}
}

package transport

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
)

type wireMsg struct {
	Type string `json:"type"`
	Pai  string `json:"pai,omitempty"`
}

func TestAIConnExchangeRoundTrip(t *testing.T) {
	bridgeSide, aiSide := net.Pipe()
	defer bridgeSide.Close()
	defer aiSide.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(aiSide)
		line, err := r.ReadString('\n')
		if err != nil {
			t.Errorf("fake AI read error: %v", err)
			return
		}

		var got wireMsg
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Errorf("fake AI decode error: %v", err)
			return
		}
		if got.Type != "tsumo" || got.Pai != "1m" {
			t.Errorf("fake AI saw %+v, want type=tsumo pai=1m", got)
		}

		reply, _ := json.Marshal(wireMsg{Type: "dahai", Pai: "1m"})
		if _, err := aiSide.Write(append(reply, '\n')); err != nil {
			t.Errorf("fake AI write error: %v", err)
		}
	}()

	conn := NewAIConn(bridgeSide)
	var reply wireMsg
	if err := conn.Exchange(wireMsg{Type: "tsumo", Pai: "1m"}, &reply); err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	<-done

	if reply.Type != "dahai" || reply.Pai != "1m" {
		t.Fatalf("reply = %+v, want type=dahai pai=1m", reply)
	}
}

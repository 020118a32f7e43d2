package api_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/billat883/ArtSync/api"
	"github.com/billat883/ArtSync/api/client"
	"github.com/billat883/ArtSync/coprocessor"
	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/decryption"
	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/expo"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
)

const testChainID = 31337

var contract = common.HexToAddress("0x00000000000000000000000000000000000e4b01")

type testServer struct {
	api    *api.API
	cli    *client.HTTPclient
	info   *api.Info
	cp     *coprocessor.Coprocessor
	enc    *coprocessor.Encryptor
	events *event.Bus
}

func newKeys(c *qt.C) *ethereum.SignKeys {
	k := ethereum.NewSignKeys()
	c.Assert(k.Generate(), qt.IsNil)
	return k
}

func newTestServer(c *qt.C) *testServer {
	stg := storage.New(memdb.New())
	cp, err := coprocessor.New(stg, coprocessor.Config{
		ChainID:    testChainID,
		KMSAddress: common.HexToAddress("0xf1e"),
		MaxValue:   1 << 10,
	})
	c.Assert(err, qt.IsNil)
	owner := newKeys(c)
	token, err := pass.New(stg, owner.Address(), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(token.SetMinter(owner.Address(), contract), qt.IsNil)
	bus := event.NewBus(nil)
	c.Cleanup(bus.Close)
	ledger, err := expo.New(stg, expo.Config{
		Address:  contract,
		ChainID:  testChainID,
		Executor: cp,
		Issuer:   token.Issuer(contract),
		Events:   bus,
	})
	c.Assert(err, qt.IsNil)

	a, err := api.New(&api.APIConfig{
		Host:          "127.0.0.1",
		Port:          0,
		Expo:          ledger,
		Token:         token,
		Decryption:    cp,
		EncryptionKey: cp.PublicKey(),
		Domain:        cp.Domain(),
		Events:        bus,
	})
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Check(a.Shutdown(ctx), qt.IsNil)
	})

	cli, err := client.New(fmt.Sprintf("http://%s", a.Addr().String()))
	c.Assert(err, qt.IsNil)
	info, err := cli.Info(context.Background())
	c.Assert(err, qt.IsNil)
	return &testServer{
		api:    a,
		cli:    cli,
		info:   info,
		cp:     cp,
		enc:    coprocessor.NewEncryptor(cp.PublicKey(), info.ChainID),
		events: bus,
	}
}

func (ts *testServer) schedule(c *qt.C, organizer *ethereum.SignKeys, passEnabled bool) types.ExhibitID {
	now := time.Now()
	id, err := ts.cli.Schedule(context.Background(), ts.info, organizer, &api.ScheduleRequest{
		MetadataCID: "bafy-api",
		StartTime:   now.Add(-time.Hour).Unix(),
		EndTime:     now.Add(time.Hour).Unix(),
		PassEnabled: passEnabled,
	})
	c.Assert(err, qt.IsNil)
	return id
}

func (ts *testServer) checkIn(c *qt.C, attendee *ethereum.SignKeys, id types.ExhibitID) error {
	h, proof, err := ts.enc.EncryptInput(1, ts.info.Contract, attendee.Address())
	c.Assert(err, qt.IsNil)
	return ts.cli.CheckIn(context.Background(), ts.info, attendee, id, h, proof)
}

func TestInfo(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(c)
	c.Assert(ts.info.Contract, qt.Equals, contract)
	c.Assert(ts.info.ChainID, qt.Equals, uint64(testChainID))
	c.Assert(ts.info.VerifyingContract, qt.Equals, common.HexToAddress("0xf1e"))
	c.Assert(ts.info.TokenName, qt.Equals, pass.Name)
	c.Assert(ts.info.TokenSymbol, qt.Equals, pass.Symbol)
	c.Assert(ts.info.NextExhibitID, qt.Equals, types.ExhibitID(1))
	c.Assert([]byte(ts.info.EncryptionKey), qt.DeepEquals, ts.cp.PublicKey().Marshal())
}

func TestAttendanceFlow(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	ts := newTestServer(c)
	organizer, attendee, stranger := newKeys(c), newKeys(c), newKeys(c)

	id := ts.schedule(c, organizer, true)
	c.Assert(id, qt.Equals, types.ExhibitID(1))

	ex, err := ts.cli.Exhibit(ctx, id)
	c.Assert(err, qt.IsNil)
	c.Assert(ex.Organizer, qt.Equals, organizer.Address())
	c.Assert(ex.Status, qt.Equals, types.ExhibitOngoing)
	list, err := ts.cli.Exhibits(ctx, 1, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)

	c.Assert(ts.checkIn(c, attendee, id), qt.IsNil)
	err = ts.checkIn(c, attendee, id)
	c.Assert(client.IsCode(err, api.ErrAlreadySignedIn), qt.IsTrue, qt.Commentf("%v", err))

	signed, err := ts.cli.HasCheckedIn(ctx, id, attendee.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(signed, qt.IsTrue)
	signed, err = ts.cli.HasCheckedIn(ctx, id, stranger.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(signed, qt.IsFalse)

	st, err := ts.cli.PassStatus(ctx, id, attendee.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(st.Eligible, qt.IsTrue)
	tokenID, err := ts.cli.MintPass(ctx, ts.info, attendee, id)
	c.Assert(err, qt.IsNil)
	c.Assert(tokenID, qt.Equals, pass.TokenID(1))
	_, err = ts.cli.MintPass(ctx, ts.info, attendee, id)
	c.Assert(client.IsCode(err, api.ErrNotEligible), qt.IsTrue)
	st, err = ts.cli.PassStatus(ctx, id, attendee.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(st.Minted, qt.IsTrue)
	c.Assert(st.TokenID, qt.Equals, tokenID)

	// reveal through the remote decryption service
	reveal := decryption.NewClient(decryption.NewAuthorizer(decryption.AuthorizerConfig{
		Domain: fhe.DecryptionDomain{ChainID: ts.info.ChainID, VerifyingContract: ts.info.VerifyingContract},
	}), ts.cli.DecryptionService(), 10*time.Second)
	source := ts.cli.CounterSource(ts.info)
	count, err := reveal.RevealCount(ctx, source, id, organizer)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, uint64(1))
	_, err = reveal.RevealCount(ctx, source, id, stranger)
	c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
}

func TestErrors(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	ts := newTestServer(c)
	organizer := newKeys(c)

	_, err := ts.cli.Exhibit(ctx, 7)
	c.Assert(client.IsCode(err, api.ErrExhibitNotFound), qt.IsTrue)

	data, status, err := ts.cli.Request(client.HTTPGET, nil, nil, "exhibits", "seven")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)
	c.Assert(string(data), qt.Contains, "40006")

	_, status, err = ts.cli.Request(client.HTTPGET, nil, nil, "exhibits", "1", "checkins", "0xnope")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	_, status, err = ts.cli.Request(client.HTTPGET, nil, []string{"limit", "0"}, "exhibits")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	// invalid window
	now := time.Now().Unix()
	_, err = ts.cli.Schedule(ctx, ts.info, organizer, &api.ScheduleRequest{StartTime: now, EndTime: now})
	c.Assert(client.IsCode(err, api.ErrInvalidWindow), qt.IsTrue)

	// a signature over another payload yields another organizer, an
	// unparseable one is rejected
	_, status, err = ts.cli.Request(client.HTTPPOST, &api.ScheduleRequest{
		StartTime: now, EndTime: now + 10, Signature: []byte{0x01},
	}, nil, api.ExhibitsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	// input bound to another attendee
	id := ts.schedule(c, organizer, false)
	attendee := newKeys(c)
	h, proof, err := ts.enc.EncryptInput(1, ts.info.Contract, organizer.Address())
	c.Assert(err, qt.IsNil)
	err = ts.cli.CheckIn(ctx, ts.info, attendee, id, h, proof)
	c.Assert(client.IsCode(err, api.ErrInvalidInputProof), qt.IsTrue)

	// passes are disabled for this exhibit
	c.Assert(ts.checkIn(c, attendee, id), qt.IsNil)
	_, err = ts.cli.MintPass(ctx, ts.info, attendee, id)
	c.Assert(client.IsCode(err, api.ErrNotEligible), qt.IsTrue)
}

func TestScheduleReplay(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	ts := newTestServer(c)
	organizer := newKeys(c)

	now := time.Now()
	req := &api.ScheduleRequest{
		MetadataCID: "bafy-replay",
		StartTime:   now.Add(-time.Hour).Unix(),
		EndTime:     now.Add(time.Hour).Unix(),
	}
	id, err := ts.cli.Schedule(ctx, ts.info, organizer, req)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, types.ExhibitID(1))
	c.Assert(req.Nonce, qt.Equals, uint64(0))

	nonce, err := ts.cli.ScheduleNonce(ctx, organizer.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(nonce, qt.Equals, uint64(1))

	// the same signed body again
	data, status, err := ts.cli.Request(client.HTTPPOST, req, nil, api.ExhibitsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusConflict)
	c.Assert(string(data), qt.Contains, "40018")

	// a nonce ahead of the stored one is rejected as well
	ahead := *req
	ahead.Nonce = 5
	ahead.Signature, err = organizer.SignEthereum(api.ScheduleMessage(ts.info.ChainID, ts.info.Contract, &ahead))
	c.Assert(err, qt.IsNil)
	_, status, err = ts.cli.Request(client.HTTPPOST, &ahead, nil, api.ExhibitsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusConflict)

	info, err := ts.cli.Info(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(info.NextExhibitID, qt.Equals, types.ExhibitID(2))

	// the client picks up the next nonce
	id, err = ts.cli.Schedule(ctx, ts.info, organizer, req)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, types.ExhibitID(2))
	c.Assert(req.Nonce, qt.Equals, uint64(1))
}

func TestMetrics(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(c)
	_, err := ts.cli.Exhibit(context.Background(), 1)
	c.Assert(err, qt.IsNotNil)

	data, status, err := ts.cli.Request(client.HTTPGET, nil, nil, api.MetricsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(string(data), qt.Contains, `artsync_http_requests_total{method="GET",path="/exhibits/{exhibitId}",status="404"} 1`)
}

func TestEventStream(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("http://%s%s", ts.api.Addr().String(), api.EventsEndpoint), nil)
	c.Assert(err, qt.IsNil)
	resp, err := http.DefaultClient.Do(req)
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.Header.Get("Content-Type"), qt.Equals, "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	c.Assert(err, qt.IsNil)
	c.Assert(line, qt.Equals, ": stream started\n")

	organizer := newKeys(c)
	ts.schedule(c, organizer, true)

	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		c.Assert(err, qt.IsNil)
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	c.Assert(lines[0], qt.Equals, "event: "+string(event.ExhibitScheduledType))
	c.Assert(lines[1], qt.Contains, `"exhibitId":1`)
	c.Assert(strings.ToLower(lines[1]), qt.Contains, strings.ToLower(organizer.Address().Hex()))
}

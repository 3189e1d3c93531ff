//go:build integration

package properties

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/model"
	"skybridge/test/integration/testutil"
)

var env = testutil.NewTestEnv()

func submit(t *testing.T, client *testutil.Client, p model.Property) *model.Property {
	t.Helper()
	resp := client.POST(t, "/api/v1/properties", p, testutil.Owner)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created model.Property
	require.NoError(t, resp.Data(&created))
	require.NotEmpty(t, created.ID)
	return &created
}

func search(t *testing.T, client *testutil.Client, query string) []model.Property {
	t.Helper()
	resp := client.GET(t, "/api/v1/properties/search"+query, testutil.Caller{})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var found []model.Property
	require.NoError(t, resp.Data(&found))
	return found
}

func TestSubmitReviewAndSearch(t *testing.T) {
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	p := submit(t, client, testutil.NewPropertyBuilder().Build())
	assert.Equal(t, model.PropertyPending, p.Status)
	assert.Equal(t, testutil.Owner.UserID, p.OwnerID)
	assert.Equal(t, "Cordova, Cebu", p.City)

	assert.Empty(t, search(t, client, ""))
	testutil.AssertStatusCode(t, client.GET(t, "/api/v1/properties/id/"+p.ID, testutil.Caller{}), http.StatusNotFound)
	testutil.AssertStatusCode(t, client.GET(t, "/api/v1/properties/id/"+p.ID, testutil.Owner), http.StatusOK)

	resp := client.GET(t, "/api/v1/admin/properties/pending", testutil.Admin)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var pending []model.Property
	require.NoError(t, resp.Data(&pending))
	require.Len(t, pending, 1)

	resp = client.PATCH(t, "/api/v1/admin/properties/id/"+p.ID+"/approve", nil, testutil.Owner)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	resp = client.PATCH(t, "/api/v1/admin/properties/id/"+p.ID+"/approve", nil, testutil.Admin)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	found := search(t, client, "?property_type=resort&amenities=Free%20WiFi")
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)
	assert.Empty(t, search(t, client, "?property_type=HOTEL"))
}

func TestRejectAndResubmit(t *testing.T) {
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	p := submit(t, client, testutil.NewPropertyBuilder().Build())

	resp := client.PATCH(t, "/api/v1/admin/properties/id/"+p.ID+"/reject",
		model.PropertyRejection{RejectionReason: "Photos are missing"}, testutil.Admin)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var rejected model.Property
	require.NoError(t, resp.Data(&rejected))
	assert.Equal(t, model.PropertyRejected, rejected.Status)
	assert.Equal(t, "Photos are missing", rejected.RejectionReason)

	resp = client.PUT(t, "/api/v1/properties/id/"+p.ID, testutil.NewPropertyBuilder().Build(), testutil.Rival)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	resp = client.PUT(t, "/api/v1/properties/id/"+p.ID, testutil.NewPropertyBuilder().WithName("Cebu Seaside Resort & Spa").Build(), testutil.Owner)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.GET(t, "/api/v1/properties/id/"+p.ID, testutil.Owner)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var detail model.PropertyDetail
	require.NoError(t, resp.Data(&detail))
	assert.Equal(t, model.PropertyPending, detail.Status)
	assert.Empty(t, detail.RejectionReason)
	assert.Equal(t, "Cebu Seaside Resort & Spa", detail.Name)
}

func TestRoomTypesAndBookingsNeedAPublishedProperty(t *testing.T) {
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	p := submit(t, client, testutil.NewPropertyBuilder().Build())

	resp := client.POST(t, "/api/v1/room-types", testutil.NewRoomTypeBuilder().WithProperty(p.ID).Build(), testutil.Rival)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	resp = client.POST(t, "/api/v1/room-types", testutil.NewRoomTypeBuilder().WithProperty(p.ID).Build(), testutil.Owner)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var rt model.RoomType
	require.NoError(t, resp.Data(&rt))

	checkIn, checkOut := testutil.Stay(20, 2)
	resp = client.POST(t, "/api/v1/bookings", testutil.BookingRequest(&rt, checkIn, checkOut), testutil.Guest)
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	assert.Equal(t, apperrors.CodeInvalidInput, testutil.ErrorCode(t, resp))

	resp = client.PATCH(t, "/api/v1/admin/properties/id/"+p.ID+"/approve", nil, testutil.Admin)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.POST(t, "/api/v1/bookings", testutil.BookingRequest(&rt, checkIn, checkOut), testutil.Guest)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	found := search(t, client, "?max_price=150")
	require.Len(t, found, 1)
	assert.Empty(t, search(t, client, "?min_price=500"))
}

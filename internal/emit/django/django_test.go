package django

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/emit/emittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmitter(t *testing.T) *Emitter {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	return e
}

func TestEmit_Artifacts(t *testing.T) {
	artifacts, err := newEmitter(t).Emit(emittest.Model(t, emittest.BlogCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"models.py", "views.py", "urls.py", "requirements.txt"}, emittest.Paths(artifacts))
}

func TestEmit_Models(t *testing.T) {
	files := emittest.Files(t, newEmitter(t), emittest.Model(t, emittest.BlogCSV))

	want := `from django.db import models


class User(models.Model):
    id = models.AutoField(primary_key=True)
    username = models.CharField(max_length=255)
    age = models.IntegerField()

    def __str__(self):
        return str(self.id)


class Posts(models.Model):
    id = models.AutoField(primary_key=True)
    user = models.ForeignKey('User', on_delete=models.CASCADE, null=True)
    content = models.CharField(max_length=255)

    def __str__(self):
        return str(self.id)
`
	assert.Equal(t, want, files["models.py"])
}

func TestEmit_ViewsAndURLs(t *testing.T) {
	files := emittest.Files(t, newEmitter(t), emittest.Model(t, emittest.BlogCSV))

	views := files["views.py"]
	assert.True(t, strings.HasPrefix(views, "from rest_framework import serializers, viewsets\n\nfrom .models import (\n    User,\n    Posts,\n)\n"))
	for _, want := range []string{
		"class UserSerializer(serializers.ModelSerializer):\n    class Meta:\n        model = User\n        fields = '__all__'\n",
		"class UserViewSet(viewsets.ModelViewSet):\n    queryset = User.objects.all().order_by('pk')\n    serializer_class = UserSerializer\n",
		"class PostsViewSet(viewsets.ModelViewSet):",
	} {
		assert.Contains(t, views, want)
	}
	assert.Less(t, strings.Index(views, "class UserSerializer"), strings.Index(views, "class PostsSerializer"))

	wantURLs := `from django.urls import include, path
from rest_framework import routers

from .views import (
    UserViewSet,
    PostsViewSet,
)

router = routers.DefaultRouter()
router.register(r'user', UserViewSet)
router.register(r'posts', PostsViewSet)

urlpatterns = [
    path('', include(router.urls)),
    path('api-auth/', include('rest_framework.urls', namespace='rest_framework')),
]
`
	assert.Equal(t, wantURLs, files["urls.py"])
	assert.Equal(t, "django\ndjangorestframework\nrequests\n", files["requirements.txt"])
}

func TestEmit_FieldKinds(t *testing.T) {
	files := emittest.Files(t, newEmitter(t), emittest.Model(t, emittest.FullCSV))
	models := files["models.py"]

	for _, want := range []string{
		"class Department(models.Model):\n    dept_id = models.AutoField(primary_key=True)\n",
		"    hired = models.DateField()\n",
		"    manager = models.ForeignKey('Employee', on_delete=models.CASCADE, null=True)\n",
		"    department = models.ForeignKey('Department', on_delete=models.CASCADE, null=True)\n",
		"        return str(self.dept_id)\n",
	} {
		assert.Contains(t, models, want)
	}
	assert.Contains(t, files["urls.py"], "router.register(r'employee', EmployeeViewSet)")
}

func TestEmit_RepeatedReferenceGetsRelatedName(t *testing.T) {
	m := emittest.Model(t, `table_name,column_name,column_type
team,id,primary_key
match,id,primary_key
match,home,foreign-team
match,away,foreign-team
`)
	models := emittest.Files(t, newEmitter(t), m)["models.py"]
	assert.Contains(t, models, "home = models.ForeignKey('Team', on_delete=models.CASCADE, null=True, related_name='match_home')")
	assert.Contains(t, models, "away = models.ForeignKey('Team', on_delete=models.CASCADE, null=True, related_name='match_away')")
}

func TestEmit_RejectsUnusableNames(t *testing.T) {
	m := emittest.Model(t, `table_name,column_name,column_type
thing,id,primary_key
thing,objects,string
thing,class,int
thing,due_,date
`)
	_, err := newEmitter(t).Emit(m)
	require.Error(t, err)

	var ne *emit.NameError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "django", ne.Backend)
	assert.Contains(t, err.Error(), `column "objects": column name is already used`)
	assert.Contains(t, err.Error(), `column "class": column name is a Python keyword`)
	assert.Contains(t, err.Error(), `column "due_": Django field names`)
}

func TestRegistered(t *testing.T) {
	e, err := emit.New(Name, emit.Options{})
	require.NoError(t, err)
	assert.Equal(t, "django", e.Name())
	assert.NotEmpty(t, e.Description())
}
